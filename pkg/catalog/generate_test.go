package catalog_test

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/cadence/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	entries, err := catalog.GenerateOrder(10, 4, rng)
	require.NoError(t, err)
	require.Len(t, entries, 10)

	counts := map[string]int{}
	for i, e := range entries {
		assert.Equal(t, i+1, e.Order)
		counts[e.TaskID]++
	}
	for id, n := range counts {
		assert.Contains(t, []string{"1", "2", "3", "4"}, id)
		// ceil(10/4) = 3 copies of each id exist before trimming.
		assert.LessOrEqual(t, n, 3)
	}
}

func TestGenerateOrder_Balanced(t *testing.T) {
	entries, err := catalog.GenerateOrder(12, 4, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)

	counts := map[string]int{}
	for _, e := range entries {
		counts[e.TaskID]++
	}
	assert.Equal(t, map[string]int{"1": 3, "2": 3, "3": 3, "4": 3}, counts)
}

func TestGenerateOrder_Invalid(t *testing.T) {
	_, err := catalog.GenerateOrder(0, 4, nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidOrderSize)
	_, err = catalog.GenerateOrder(4, -1, nil)
	assert.ErrorIs(t, err, catalog.ErrInvalidOrderSize)
}

func TestWriteOrder_RoundTripsThroughParser(t *testing.T) {
	entries, err := catalog.GenerateOrder(5, 2, rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, catalog.WriteOrder(&buf, entries))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("order,task_id\n")))

	parsed, err := catalog.ParseOrder(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, parsed)
}
