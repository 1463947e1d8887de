package catalog_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/aretw0/cadence/pkg/catalog"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderedTrials(t *testing.T) {
	defs := []domain.Trial{
		{ID: "1", Description: "A"},
		{ID: "2", Description: "B"},
	}

	t.Run("Sorts By Order", func(t *testing.T) {
		order := []domain.SequenceEntry{
			{Order: 2, TaskID: "2"},
			{Order: 1, TaskID: "1"},
		}
		got := catalog.BuildOrderedTrials(defs, order)
		assert.Equal(t, []domain.Trial{
			{ID: "1", Description: "A"},
			{ID: "2", Description: "B"},
		}, got)
	})

	t.Run("Drops Unknown Ids", func(t *testing.T) {
		order := []domain.SequenceEntry{
			{Order: 1, TaskID: "1"},
			{Order: 2, TaskID: "9"},
			{Order: 3, TaskID: "2"},
		}
		got := catalog.BuildOrderedTrials(defs, order)
		assert.Len(t, got, len(order)-1)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "2", got[1].ID)
	})

	t.Run("Empty Inputs", func(t *testing.T) {
		got := catalog.BuildOrderedTrials(nil, []domain.SequenceEntry{{Order: 1, TaskID: "1"}})
		require.NotNil(t, got)
		assert.Empty(t, got)

		got = catalog.BuildOrderedTrials(defs, nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Stable On Ties", func(t *testing.T) {
		order := []domain.SequenceEntry{
			{Order: 5, TaskID: "2"},
			{Order: 5, TaskID: "1"},
			{Order: 1, TaskID: "2"},
		}
		got := catalog.BuildOrderedTrials(defs, order)
		ids := []string{got[0].ID, got[1].ID, got[2].ID}
		assert.Equal(t, []string{"2", "2", "1"}, ids)
	})

	t.Run("Last Definition Wins", func(t *testing.T) {
		dup := append(slices.Clone(defs), domain.Trial{ID: "1", Description: "A2"})
		got := catalog.BuildOrderedTrials(dup, []domain.SequenceEntry{{Order: 1, TaskID: "1"}})
		require.Len(t, got, 1)
		assert.Equal(t, "A2", got[0].Description)
	})

	t.Run("Does Not Mutate Order", func(t *testing.T) {
		order := []domain.SequenceEntry{{Order: 2, TaskID: "2"}, {Order: 1, TaskID: "1"}}
		before := slices.Clone(order)
		catalog.BuildOrderedTrials(defs, order)
		assert.Equal(t, before, order)
	})
}

func TestBuildOrderedTrials_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 200; iter++ {
		var defs []domain.Trial
		for i := 0; i < rng.IntN(6); i++ {
			defs = append(defs, domain.Trial{ID: fmt.Sprint(rng.IntN(8)), Description: fmt.Sprint("d", i)})
		}
		var order []domain.SequenceEntry
		for i := 0; i < rng.IntN(20); i++ {
			order = append(order, domain.SequenceEntry{Order: rng.IntN(10) - 5, TaskID: fmt.Sprint(rng.IntN(8))})
		}

		got := catalog.BuildOrderedTrials(defs, order)
		again := catalog.BuildOrderedTrials(defs, order)

		require.LessOrEqual(t, len(got), len(order))
		require.Equal(t, got, again, "must be deterministic")

		// Every output id is in the order table, in ascending order position.
		sorted := slices.Clone(order)
		slices.SortStableFunc(sorted, func(a, b domain.SequenceEntry) int { return a.Order - b.Order })
		pos := 0
		for _, trial := range got {
			for pos < len(sorted) && sorted[pos].TaskID != trial.ID {
				pos++
			}
			require.Less(t, pos, len(sorted), "trial %s not found in order sequence", trial.ID)
			pos++
		}
	}
}
