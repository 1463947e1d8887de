package catalog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/cadence/pkg/catalog"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinitions(t *testing.T) {
	input := "id,description\n" +
		"1, Right hand grasp \n" +
		"2,Left hand grasp\n" +
		"\n" +
		"3,\n" +
		",orphan\n" +
		"4\n" +
		"5,Both feet,extra\n"

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	trials, err := catalog.ParseDefinitions(strings.NewReader(input), catalog.WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, []domain.Trial{
		{ID: "1", Description: "Right hand grasp"},
		{ID: "2", Description: "Left hand grasp"},
		{ID: "5", Description: "Both feet"},
	}, trials)
	assert.Contains(t, logs.String(), "skipping row")
}

func TestParseDefinitions_Empty(t *testing.T) {
	for _, input := range []string{"", "id,description\n"} {
		trials, err := catalog.ParseDefinitions(strings.NewReader(input))
		require.NoError(t, err)
		assert.NotNil(t, trials)
		assert.Empty(t, trials)
	}
}

func TestParseOrder(t *testing.T) {
	input := "order,task_id\n" +
		"2,1\n" +
		"one,2\n" +
		"3,\n" +
		" 1 , 3 \n" +
		"-4,2\n"

	entries, err := catalog.ParseOrder(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []domain.SequenceEntry{
		{Order: 2, TaskID: "1"},
		{Order: 1, TaskID: "3"},
		{Order: -4, TaskID: "2"},
	}, entries)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParse_ReadError(t *testing.T) {
	_, err := catalog.ParseOrder(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	defsPath := filepath.Join(dir, "task-definitions.csv")
	orderPath := filepath.Join(dir, "task-sequence.csv")

	require.NoError(t, os.WriteFile(defsPath, []byte("id,description\n1,A\n2,B\n"), 0o644))
	require.NoError(t, os.WriteFile(orderPath, []byte("order,task_id\n2,2\n1,1\n3,9\n"), 0o644))

	c, err := catalog.Load(defsPath, orderPath)
	require.NoError(t, err)
	assert.Len(t, c.Definitions, 2)
	assert.Len(t, c.Order, 3)
	assert.Equal(t, []domain.Trial{{ID: "1", Description: "A"}, {ID: "2", Description: "B"}}, c.Trials)
	assert.Equal(t, 1, c.Dropped())

	_, err = catalog.Load(filepath.Join(dir, "missing.csv"), orderPath)
	assert.Error(t, err)
}
