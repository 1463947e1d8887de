package cli

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/aretw0/cadence/pkg/catalog"
)

// GenerateOrder writes a random order table of rows entries with task ids in
// [1, maxTaskID] to path, or to out when path is empty. seed 0 draws a random
// seed.
func GenerateOrder(out io.Writer, path string, rows, maxTaskID int, seed uint64) error {
	if seed == 0 {
		seed = rand.Uint64()
	}
	entries, err := catalog.GenerateOrder(rows, maxTaskID, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return err
	}

	if path == "" {
		return catalog.WriteOrder(out, entries)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := catalog.WriteOrder(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
