package catalog

import (
	"fmt"
	"os"

	"github.com/aretw0/cadence/pkg/domain"
)

// Catalog holds both raw tables and the merged trial list.
type Catalog struct {
	Definitions []domain.Trial
	Order       []domain.SequenceEntry
	Trials      []domain.Trial
}

// New merges already parsed tables.
func New(definitions []domain.Trial, order []domain.SequenceEntry) *Catalog {
	return &Catalog{
		Definitions: definitions,
		Order:       order,
		Trials:      BuildOrderedTrials(definitions, order),
	}
}

// Dropped returns how many order entries did not resolve to a definition.
func (c *Catalog) Dropped() int {
	return len(c.Order) - len(c.Trials)
}

// Load reads both tables from disk and merges them.
func Load(definitionsPath, orderPath string, opts ...Option) (*Catalog, error) {
	defs, err := parseFile(definitionsPath, func(f *os.File) ([]domain.Trial, error) {
		return ParseDefinitions(f, opts...)
	})
	if err != nil {
		return nil, err
	}

	order, err := parseFile(orderPath, func(f *os.File) ([]domain.SequenceEntry, error) {
		return ParseOrder(f, opts...)
	})
	if err != nil {
		return nil, err
	}

	return New(defs, order), nil
}

func parseFile[T any](path string, parse func(*os.File) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parse(f)
}
