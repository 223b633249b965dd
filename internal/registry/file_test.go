package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "landscape/pkg/domain-errors"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSource(t *testing.T) {
	t.Run("reads an export", func(t *testing.T) {
		path := writeExport(t, `[{"project_id":"proj-a","name":"Proj A","state":"incubating","website_url":"https://a.example"}]`)

		records, err := NewFileSource(path, quietLogger()).FetchAll(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "proj-a", records[0].ID)
		assert.Equal(t, "https://a.example", records[0].HomepageURL)
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), nil).FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfig))
		assert.Contains(t, err.Error(), "nope.json")
	})

	t.Run("malformed file is a config error", func(t *testing.T) {
		path := writeExport(t, `{"projects": []}`)
		_, err := NewFileSource(path, quietLogger()).FetchAll(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfig))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileSource(writeExport(t, `[]`), quietLogger()).FetchAll(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeRegistryUnavailable))
	})
}
