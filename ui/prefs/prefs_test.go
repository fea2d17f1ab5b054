package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", prefsFile)
	p := LoadFrom(path)
	assert.Equal(t, "", p.String(KeyLastDir))
	assert.Equal(t, 900.0, p.Float(KeyWindowWidth, 900))

	p.SetString(KeyLastDir, "/home/drawings")
	p.SetFloat(KeyWindowWidth, 1280)
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, "/home/drawings", q.String(KeyLastDir))
	assert.Equal(t, 1280.0, q.Float(KeyWindowWidth, 900))
}

func TestCorruptFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	p := LoadFrom(path)
	assert.Equal(t, 1.5, p.Float(KeyZoom, 1.5))
}
