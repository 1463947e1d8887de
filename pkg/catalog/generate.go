package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/aretw0/cadence/pkg/domain"
)

// ErrInvalidOrderSize is returned by GenerateOrder for non-positive arguments.
var ErrInvalidOrderSize = errors.New("rows and max task id must be positive")

// GenerateOrder builds a balanced, shuffled order table.
// Each task id in 1..maxTaskID appears ceil(rows/maxTaskID) times before the
// shuffled list is trimmed to rows entries, numbered 1..rows.
func GenerateOrder(rows, maxTaskID int, rng *rand.Rand) ([]domain.SequenceEntry, error) {
	if rows <= 0 || maxTaskID <= 0 {
		return nil, ErrInvalidOrderSize
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	repetitions := (rows + maxTaskID - 1) / maxTaskID
	ids := make([]int, 0, repetitions*maxTaskID)
	for id := 1; id <= maxTaskID; id++ {
		for range repetitions {
			ids = append(ids, id)
		}
	}

	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	ids = ids[:rows]

	entries := make([]domain.SequenceEntry, rows)
	for i, id := range ids {
		entries[i] = domain.SequenceEntry{Order: i + 1, TaskID: strconv.Itoa(id)}
	}
	return entries, nil
}

// WriteOrder writes entries as an order table with its header row.
func WriteOrder(w io.Writer, entries []domain.SequenceEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"order", "task_id"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{strconv.Itoa(e.Order), e.TaskID}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", e.Order, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
