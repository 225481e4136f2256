package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/Cyclone1070/secondbrain/internal/tool"
)

// defaultFilePerm is used for files that did not exist before the write.
const defaultFilePerm os.FileMode = 0o644

// WriteFileTool handles file writing operations.
type WriteFileTool struct {
	fileOps      fileWriter
	pathResolver pathResolver
}

// NewWriteFileTool creates a new WriteFileTool with injected dependencies.
func NewWriteFileTool(fileOps fileWriter, pathResolver pathResolver) *WriteFileTool {
	return &WriteFileTool{
		fileOps:      fileOps,
		pathResolver: pathResolver,
	}
}

// Run creates or overwrites a file in the workspace with req.Content verbatim.
// The parent directory must already exist; nothing is created implicitly.
// Existing files keep their permissions. The write is atomic (temp file + rename).
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *WriteFileTool) Run(ctx context.Context, req WriteFileRequest) tool.Result {
	if err := req.Validate(); err != nil {
		return tool.Failure(tool.KindInvalidArguments, err, "%v", err)
	}

	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return tool.ResolveFailure(err, req.FilePath, fmt.Sprintf(`Cannot read / write to "%s" as it is outside the permitted working directory`, req.FilePath))
	}

	perm := defaultFilePerm
	info, err := t.fileOps.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return tool.Failure(tool.KindWrongType, ErrIsDirectory, `Cannot write to "%s" as it is a directory`, req.FilePath)
	case err == nil:
		perm = info.Mode().Perm()
	case !os.IsNotExist(err):
		return tool.Failure(tool.KindExecution, err, "writing file: %s", tool.PlainError(err))
	}

	parent, err := t.fileOps.Stat(filepath.Dir(abs))
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failure(tool.KindNotFound, ErrParentMissing, `Parent directory of "%s" does not exist`, req.FilePath)
		}
		return tool.Failure(tool.KindExecution, err, "writing file: %s", tool.PlainError(err))
	}
	if !parent.IsDir() {
		return tool.Failure(tool.KindWrongType, ErrParentMissing, `Parent of "%s" is not a directory`, req.FilePath)
	}

	if err := t.fileOps.WriteFileAtomic(abs, []byte(req.Content), perm); err != nil {
		return tool.Failure(tool.KindExecution, err, "writing file: %s", tool.PlainError(err))
	}

	return tool.Success(fmt.Sprintf(`Successfully wrote to "%s" (%d characters written)`, req.FilePath, utf8.RuneCountInString(req.Content)))
}
