package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"b.hcl", "a.YAML", "notes.txt", "nested/c.yml"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o600))
	}

	// --- Act ---
	files, err := FindFilesByExtension(root, ".hcl", ".yaml", ".yml")

	// --- Assert ---
	require.NoError(t, err)
	want := []string{
		filepath.Join(root, "a.YAML"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.yml"),
	}
	assert.Equal(t, want, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "absent"), ".hcl")
	assert.Error(t, err)
}
