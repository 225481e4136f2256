package file

import (
	"context"
	"fmt"
	"os"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/tool"
)

// ReadFileTool handles file reading operations.
type ReadFileTool struct {
	fileOps      fileReader
	config       *config.Config
	pathResolver pathResolver
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(fileOps fileReader, cfg *config.Config, pathResolver pathResolver) *ReadFileTool {
	return &ReadFileTool{
		fileOps:      fileOps,
		config:       cfg,
		pathResolver: pathResolver,
	}
}

// Run reads a regular file from the workspace, returning at most
// tools.max_chars characters. Longer files are cut at the limit and a
// truncation notice naming the file is appended.
//
// Note: ctx is accepted for API consistency but not used - file I/O is synchronous.
func (t *ReadFileTool) Run(ctx context.Context, req ReadFileRequest) tool.Result {
	if err := req.Validate(); err != nil {
		return tool.Failure(tool.KindInvalidArguments, err, "%v", err)
	}

	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return tool.ResolveFailure(err, req.FilePath, fmt.Sprintf(`Cannot read "%s" as it is outside the permitted working directory`, req.FilePath))
	}

	info, err := t.fileOps.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failure(tool.KindNotFound, err, `File not found or is not a regular file: "%s"`, req.FilePath)
		}
		return tool.Failure(tool.KindExecution, err, "reading file: %s", tool.PlainError(err))
	}
	if !info.Mode().IsRegular() {
		return tool.Failure(tool.KindWrongType, ErrNotRegular, `File not found or is not a regular file: "%s"`, req.FilePath)
	}

	maxChars := t.config.Tools.MaxChars
	content, truncated, err := t.fileOps.ReadRunes(abs, maxChars)
	if err != nil {
		return tool.Failure(tool.KindExecution, err, "reading file: %s", tool.PlainError(err))
	}

	if truncated {
		content += fmt.Sprintf("\n[...File \"%s\" truncated at %d characters]", req.FilePath, maxChars)
	}

	return tool.Success(content)
}
