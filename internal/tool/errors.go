package tool

import (
	"errors"
	"os"

	"github.com/Cyclone1070/secondbrain/internal/tool/service/path"
)

// ResolveFailure turns a path resolution error into a Result.
// Escapes use the caller's violation message; anything else (symlink loops,
// unreadable links) is reported without exposing the absolute root.
func ResolveFailure(err error, requested string, violation string) Result {
	if errors.Is(err, path.ErrOutsideWorkspace) {
		return Failure(KindPathViolation, err, "%s", violation)
	}
	return Failure(KindNotFound, err, `Cannot resolve "%s"`, requested)
}

// PlainError renders err without the absolute path that os errors embed,
// so the workspace location is not leaked into model-facing text.
func PlainError(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op + ": " + pathErr.Err.Error()
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Op + ": " + linkErr.Err.Error()
	}
	return err.Error()
}
