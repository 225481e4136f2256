package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/fs"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWriteTool(root string) *WriteFileTool {
	return NewWriteFileTool(fs.NewOSFileSystem(), path.NewResolver(root))
}

func TestWriteFile_CreatesNewFile(t *testing.T) {
	root := newTestWorkspace(t)

	res := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: "lorem.txt", Content: "wait, this isn't lorem ipsum"})

	require.False(t, res.IsError(), res.Content)
	assert.Equal(t, `Successfully wrote to "lorem.txt" (28 characters written)`, res.Content)
	data, err := os.ReadFile(filepath.Join(root, "lorem.txt"))
	require.NoError(t, err)
	assert.Equal(t, "wait, this isn't lorem ipsum", string(data))
}

func TestWriteFile_OverwritesAndKeepsMode(t *testing.T) {
	root := newTestWorkspace(t)
	target := filepath.Join(root, "script.py")
	require.NoError(t, os.WriteFile(target, []byte("old content that is longer"), 0o755))

	res := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: "script.py", Content: "new"})

	require.False(t, res.IsError())
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestWriteFile_ReportsCharacterCount(t *testing.T) {
	root := newTestWorkspace(t)

	res := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: "u.txt", Content: "héllo"})

	assert.Equal(t, `Successfully wrote to "u.txt" (5 characters written)`, res.Content)
}

func TestWriteFile_EmptyContentTruncates(t *testing.T) {
	root := newTestWorkspace(t)
	target := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	res := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: "a.txt", Content: ""})

	require.False(t, res.IsError())
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWriteFile_ThenRead_RoundTrips(t *testing.T) {
	root := newTestWorkspace(t)
	content := "line one\n\ttabbed\r\nunicode: ✓ 日本\n"

	w := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: "pkg.txt", Content: content})
	require.False(t, w.IsError())

	r := NewReadFileTool(fs.NewOSFileSystem(), config.DefaultConfig(), path.NewResolver(root)).
		Run(context.Background(), ReadFileRequest{FilePath: "pkg.txt"})

	require.False(t, r.IsError())
	assert.Equal(t, content, r.Content)
}

func TestWriteFile_RejectedCallsDoNotMutate(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(base, "sandbox")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(base, "sandbox2"), 0o755))

	tests := []struct {
		name     string
		filePath string
		wantKind tool.ErrorKind
	}{
		{"absolute outside", "/tmp/temp.txt", tool.KindPathViolation},
		{"parent traversal", "../escape.txt", tool.KindPathViolation},
		{"sibling prefix", "../sandbox2/x.txt", tool.KindPathViolation},
		{"missing parent", "nested/new.txt", tool.KindNotFound},
		{"directory target", "dir", tool.KindWrongType},
		{"empty path", "", tool.KindInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := snapshot(t, base)

			res := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: tt.filePath, Content: "this should not be allowed"})

			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Contains(t, res.Content, "Error: ")
			assert.Equal(t, before, snapshot(t, base))
		})
	}
}

func TestWriteFile_OutsideMessage(t *testing.T) {
	root := newTestWorkspace(t)

	res := newWriteTool(root).Run(context.Background(), WriteFileRequest{FilePath: "/tmp/temp.txt", Content: "x"})

	assert.Equal(t, `Error: Cannot read / write to "/tmp/temp.txt" as it is outside the permitted working directory`, res.Content)
}
