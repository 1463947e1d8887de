package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cadence version")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "graph")
	assert.Contains(t, out, "fixation")
}

func TestGenOrderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.csv")
	_, err := execute(t, "gen-order", "8", "4", "--seed", "3", "-o", path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "order,task_id")

	_, err = execute(t, "gen-order", "x", "4")
	assert.Error(t, err)
}

func TestPrepareCommand(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "tasks.csv")
	order := filepath.Join(dir, "order.csv")
	require.NoError(t, os.WriteFile(defs, []byte("id,description\n1,Left hand\n"), 0644))
	require.NoError(t, os.WriteFile(order, []byte("order,task_id\n1,1\n"), 0644))

	cfgPath := filepath.Join(dir, "cadence.yaml")
	storePath := filepath.Join(dir, "params.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  backend: file\n  path: "+storePath+"\n"), 0644))

	_, err := execute(t, "prepare", "-c", cfgPath, "-d", defs, "-o", order, "-q")
	require.NoError(t, err)
	assert.FileExists(t, storePath)
}

func TestInvalidConfig(t *testing.T) {
	_, err := execute(t, "graph", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
