package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cadence/internal/adapters/file"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "params.json"))
	ports.RunParamStoreContract(t, store)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "params.json")
	ctx := context.Background()

	require.NoError(t, file.New(path).Set(ctx, domain.KeyTaskDuration, "3000"))

	got, err := file.New(path).Get(ctx, domain.KeyTaskDuration)
	require.NoError(t, err)
	assert.Equal(t, "3000", got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := file.New(path).Get(context.Background(), domain.KeyOrderedTasks)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrParamNotFound)
}

func TestFileStore_DeleteLastKeyRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	store := file.New(path)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	require.FileExists(t, path)

	require.NoError(t, store.Delete(ctx, "k"))
	assert.NoFileExists(t, path)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, file.DefaultPath, file.New("").Path)
}
