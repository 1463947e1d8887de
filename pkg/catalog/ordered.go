package catalog

import (
	"slices"

	"github.com/aretw0/cadence/pkg/domain"
)

// BuildOrderedTrials resolves the order table against the definitions.
//
// Entries are sorted ascending by Order, ties keeping their input position.
// Duplicate definition ids resolve to the last definition. Entries whose task
// id has no definition are dropped. The inputs are not modified.
func BuildOrderedTrials(definitions []domain.Trial, order []domain.SequenceEntry) []domain.Trial {
	lookup := make(map[string]domain.Trial, len(definitions))
	for _, t := range definitions {
		lookup[t.ID] = t
	}

	sorted := slices.Clone(order)
	slices.SortStableFunc(sorted, func(a, b domain.SequenceEntry) int {
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		}
		return 0
	})

	trials := make([]domain.Trial, 0, len(sorted))
	for _, entry := range sorted {
		if t, ok := lookup[entry.TaskID]; ok {
			trials = append(trials, t)
		}
	}
	return trials
}
