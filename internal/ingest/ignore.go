package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreReadError is returned when an ignore file exists but cannot be read.
type IgnoreReadError struct {
	Path  string
	Cause error
}

func (e *IgnoreReadError) Error() string {
	return fmt.Sprintf("failed to read ignore file at %s: %v", e.Path, e.Cause)
}
func (e *IgnoreReadError) Unwrap() error { return e.Cause }

// ignoreFileReader is the filesystem access the matcher needs.
type ignoreFileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// IgnoreMatcher applies gitignore-style patterns from files at the vault root.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads each named ignore file under vaultRoot, in order.
// Missing files are skipped; a vault with none never ignores anything.
func NewIgnoreMatcher(vaultRoot string, fs ignoreFileReader, names ...string) (*IgnoreMatcher, error) {
	if fs == nil {
		fs = osReader{}
	}

	var patterns []gitignore.Pattern
	for _, name := range names {
		if name == "" {
			continue
		}
		p := filepath.Join(vaultRoot, name)
		data, err := fs.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &IgnoreReadError{Path: p, Cause: err}
		}
		for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(trimmed, nil))
		}
	}

	if len(patterns) == 0 {
		return &IgnoreMatcher{}, nil
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore reports whether the vault-relative path matches a pattern.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}
	return m.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments, dropping empty and "." parts.
func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
