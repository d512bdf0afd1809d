package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "doc.txt", "hello world\nsecond line")

	pages, err := New().Load(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "hello world")
}

func TestLoadTextWhitespaceOnlyYieldsNoPages(t *testing.T) {
	path := writeFile(t, "blank.txt", "   \n\t\n ")

	pages, err := New().Load(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoadMarkdownStripsMarkup(t *testing.T) {
	path := writeFile(t, "doc.md", "# Title\n\nSome *emphasized* text with a [link](https://example.com).\n")

	pages, err := New().Load(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	text := pages[0].Text
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "emphasized")
	assert.Contains(t, text, "link")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
	assert.NotContains(t, text, "https://example.com")
}

func TestLoadMarkdownEmptyYieldsNoPages(t *testing.T) {
	path := writeFile(t, "blank.md", "\n\n")

	pages, err := New().Load(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "doc.xyz", "content")

	_, err := New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}
