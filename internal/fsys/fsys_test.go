package fsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveExtractedContentNumbersSequentially(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	name1, err := fs.SaveExtractedContent("first")
	require.NoError(t, err)
	name2, err := fs.SaveExtractedContent("second")
	require.NoError(t, err)

	assert.NotEqual(t, name1, name2)

	content, err := fs.ReadFile(name1)
	require.NoError(t, err)
	assert.Equal(t, "first", content)
}

func TestWriteAndGetTodo(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, fs.GetTodoContents())
	require.NoError(t, fs.WriteTodo("- [ ] step one"))
	assert.Equal(t, "- [ ] step one", fs.GetTodoContents())
}

func TestReadFileRejectsPathEscape(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = fs.ReadFile("../../etc/passwd")
	assert.Error(t, err)
}

func TestSaveLoadState(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	type snapshot struct {
		Step int    `json:"step"`
		Task string `json:"task"`
	}
	in := snapshot{Step: 5, Task: "log in"}
	require.NoError(t, fs.SaveState(in))

	var out snapshot
	require.NoError(t, fs.LoadState(&out))
	assert.Equal(t, in, out)
}

func TestReopenResumesExtractIndex(t *testing.T) {
	dir := t.TempDir()
	fs, err := New(dir)
	require.NoError(t, err)
	_, err = fs.SaveExtractedContent("a")
	require.NoError(t, err)
	_, err = fs.SaveExtractedContent("b")
	require.NoError(t, err)

	fs2, err := New(dir)
	require.NoError(t, err)
	name, err := fs2.SaveExtractedContent("c")
	require.NoError(t, err)
	assert.Contains(t, name, "extract_3.md")
}
