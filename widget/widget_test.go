package widget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookups(t *testing.T) {
	reg := NewRegistry(t.TempDir(), "widgets.example.com")

	require.Len(t, reg.All(), 5)

	for _, def := range Definitions() {
		byID, ok := reg.ByID(def.ID)
		require.True(t, ok, "widget %s not found by id", def.ID)
		assert.Equal(t, def.TemplateURI, byID.TemplateURI)

		byURI, ok := reg.ByURI(def.TemplateURI)
		require.True(t, ok, "widget %s not found by uri", def.ID)
		// Both lookups resolve to the same canonical record.
		assert.Same(t, byID, byURI)
	}

	_, ok := reg.ByID("modulo")
	assert.False(t, ok)
	_, ok = reg.ByURI("ui://widget/modulo.html")
	assert.False(t, ok)
}

func TestRegistryFallbackShell(t *testing.T) {
	// Empty assets dir: construction must not fail, every widget gets a
	// generated shell.
	reg := NewRegistry(t.TempDir(), "widgets.example.com")

	for _, w := range reg.All() {
		html := reg.HTML(w)
		assert.NotEmpty(t, html)
		assert.Contains(t, html, "https://widgets.example.com/assets/"+w.ID+".js")
		assert.Contains(t, html, w.Title)
	}
}

func TestRegistryLiveReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "add.html")
	require.NoError(t, os.WriteFile(path, []byte("<html>v1</html>"), 0o644))

	reg := NewRegistry(dir, "widgets.example.com")
	w, ok := reg.ByID("add")
	require.True(t, ok)

	assert.Equal(t, "<html>v1</html>", reg.HTML(w))

	// On-disk updates show up without rebuilding the registry.
	require.NoError(t, os.WriteFile(path, []byte("<html>v2</html>"), 0o644))
	assert.Equal(t, "<html>v2</html>", reg.HTML(w))

	// Removing the file drops back to the generated shell.
	require.NoError(t, os.Remove(path))
	assert.Contains(t, reg.HTML(w), "https://widgets.example.com/assets/add.js")
}
