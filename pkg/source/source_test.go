package source

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/complore/internal/testutil"
)

var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*MapSource)(nil)
)

func TestFilesystemSource(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "sub/a.js", "const a = 1;\n")
	src := NewFilesystem(root)

	content, err := src.Read("sub/a.js")
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", string(content))

	_, err = src.Read("nonexistent.txt")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFilesystemSource_DefaultRoot(t *testing.T) {
	assert.Equal(t, ".", NewFilesystem("").root)
}

func TestMapSource(t *testing.T) {
	src := NewMap(map[string]string{"a.js": "x"})

	content, err := src.Read("a.js")
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))

	_, err = src.Read("b.js")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
