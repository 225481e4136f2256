package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/secondbrain/internal/tool"
)

// ListFilesTool lists the direct children of a directory inside the workspace.
type ListFilesTool struct {
	fs           dirLister
	pathResolver pathResolver
}

// NewListFilesTool creates a new ListFilesTool with injected dependencies.
func NewListFilesTool(fs dirLister, pathResolver pathResolver) *ListFilesTool {
	return &ListFilesTool{
		fs:           fs,
		pathResolver: pathResolver,
	}
}

// Run lists req.Directory (default ".") one entry per line:
//
//	<name>: file_size=<n> bytes, is_dir=False
//	<name>: file_size=None bytes, is_dir=True
//
// Entries come back in the order the filesystem layer returns them.
func (t *ListFilesTool) Run(ctx context.Context, req ListFilesRequest) tool.Result {
	dir := req.Directory
	if dir == "" {
		dir = "."
	}

	abs, err := t.pathResolver.Abs(dir)
	if err != nil {
		return tool.ResolveFailure(err, dir, fmt.Sprintf(`Cannot list "%s" as it is outside the permitted working directory`, dir))
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failure(tool.KindNotFound, err, `"%s" is not a directory`, dir)
		}
		return tool.Failure(tool.KindExecution, err, "listing files: %s", tool.PlainError(err))
	}
	if !info.IsDir() {
		return tool.Failure(tool.KindWrongType, nil, `"%s" is not a directory`, dir)
	}

	entries, err := t.fs.ListDir(abs)
	if err != nil {
		return tool.Failure(tool.KindExecution, err, "listing files: %s", tool.PlainError(err))
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			return tool.Failure(tool.KindInternal, ctx.Err(), "listing files: %v", ctx.Err())
		}
		if entry.Mode()&os.ModeSymlink != 0 {
			entry = t.followLink(abs, entry)
		}
		if entry.IsDir() {
			lines = append(lines, fmt.Sprintf("%s: file_size=None bytes, is_dir=True", entry.Name()))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: file_size=%d bytes, is_dir=False", entry.Name(), entry.Size()))
	}

	return tool.Success(strings.Join(lines, "\n"))
}

// followLink describes a symlinked child by its target only when the target
// resolves inside the workspace. Links that escape or dangle are reported as
// themselves.
func (t *ListFilesTool) followLink(dir string, link os.FileInfo) os.FileInfo {
	target, err := t.pathResolver.Abs(filepath.Join(dir, link.Name()))
	if err != nil {
		return link
	}
	info, err := t.fs.Stat(target)
	if err != nil {
		return link
	}
	return namedInfo{FileInfo: info, name: link.Name()}
}

// namedInfo reports a target's info under the link's name.
type namedInfo struct {
	os.FileInfo
	name string
}

func (n namedInfo) Name() string { return n.name }
