package path

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxSymlinkHops bounds how many links a single component may traverse.
const maxSymlinkHops = 64

// linkReader is the filesystem surface needed for symlink-aware resolution.
type linkReader interface {
	Lstat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
}

type osLinkReader struct{}

func (osLinkReader) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }
func (osLinkReader) Readlink(path string) (string, error)   { return os.Readlink(path) }

// Resolver provides path resolution within a workspace boundary.
// The root is fixed at construction and never changes.
type Resolver struct {
	workspaceRoot string
	fs            linkReader
}

// NewResolver creates a new path resolver for the given canonical workspace root.
// Callers should pass the output of CanonicaliseRoot.
func NewResolver(workspaceRoot string) *Resolver {
	if workspaceRoot != "" {
		workspaceRoot = filepath.Clean(workspaceRoot)
	}
	return &Resolver{
		workspaceRoot: workspaceRoot,
		fs:            osLinkReader{},
	}
}

// Root returns the canonical workspace root.
func (r *Resolver) Root() string {
	return r.workspaceRoot
}

// CanonicaliseRoot canonicalises a workspace root path by making it absolute and resolving symlinks.
// Returns an error if the path doesn't exist or isn't a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &WorkspaceRootError{Root: root, Cause: err}
	}

	// Resolve symlinks in the workspace root to get canonical path
	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &WorkspaceRootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// Abs resolves a model-supplied path to an absolute path inside the workspace.
//
// Relative paths are joined to the root; absolute paths are taken as-is and
// must already point inside it. Components are walked one at a time so that
// "..", "." and symlinks are resolved against the real filesystem. Components
// that do not exist yet are accepted (write targets), but every existing
// ancestor is still resolved and confined. Any escape returns ErrOutsideWorkspace
// without touching the target.
func (r *Resolver) Abs(path string) (string, error) {
	if r.workspaceRoot == "" {
		return "", ErrWorkspaceRootNotSet
	}

	var absInput string
	if filepath.IsAbs(path) {
		absInput = filepath.Clean(path)
	} else {
		absInput = filepath.Join(r.workspaceRoot, path)
	}

	relPath, err := filepath.Rel(r.workspaceRoot, absInput)
	if err != nil || escapes(relPath) {
		return "", ErrOutsideWorkspace
	}
	if relPath == "." {
		return r.workspaceRoot, nil
	}

	return r.walk(relPath)
}

// Rel returns the slash-separated path of p relative to the workspace root.
// p is resolved with Abs first; the root itself yields ".".
func (r *Resolver) Rel(p string) (string, error) {
	abs, err := r.Abs(p)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.workspaceRoot, abs)
	if err != nil {
		return "", ErrOutsideWorkspace
	}

	return filepath.ToSlash(rel), nil
}

// walk resolves relPath component by component starting at the root.
func (r *Resolver) walk(relPath string) (string, error) {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	current := r.workspaceRoot

	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if current == r.workspaceRoot {
				return "", ErrOutsideWorkspace
			}
			current = filepath.Dir(current)
			continue
		}

		// Missing components are kept as-is so later ".." can step back
		// into existing directories and be resolved again.
		resolved, err := r.followSymlinkChain(filepath.Join(current, part))
		if err != nil {
			return "", err
		}
		current = resolved
	}

	if err := r.confirm(current); err != nil {
		return "", err
	}
	return current, nil
}

// confirm re-checks the deepest existing ancestor of p with every link
// expanded, catching link targets that pass through other links.
func (r *Resolver) confirm(p string) error {
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			if !r.contains(resolved) {
				return ErrOutsideWorkspace
			}
			return nil
		}
		parent := filepath.Dir(p)
		if p == r.workspaceRoot || parent == p {
			return nil
		}
		p = parent
	}
}

// followSymlinkChain follows a symlink chain until it reaches a non-symlink or detects a loop.
// A missing path resolves to itself. Every hop must stay inside the workspace.
func (r *Resolver) followSymlinkChain(p string) (string, error) {
	visited := make(map[string]struct{})
	current := p

	for hop := 0; hop <= maxSymlinkHops; hop++ {
		if _, seen := visited[current]; seen {
			return "", &SymlinkError{Path: p, Cause: ErrSymlinkLoop}
		}
		visited[current] = struct{}{}

		if !r.contains(current) {
			return "", ErrOutsideWorkspace
		}

		info, err := r.fs.Lstat(current)
		if err != nil {
			if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
				return current, nil
			}
			return "", &SymlinkError{Path: current, Cause: err}
		}

		if info.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}

		target, err := r.fs.Readlink(current)
		if err != nil {
			return "", &SymlinkError{Path: current, Cause: err}
		}

		if filepath.IsAbs(target) {
			current = filepath.Clean(target)
		} else {
			current = filepath.Join(filepath.Dir(current), target)
		}
	}

	return "", &SymlinkError{Path: p, Cause: ErrSymlinkChainTooLong}
}

// contains reports whether p is the root or lies beneath it, compared by path segments.
func (r *Resolver) contains(p string) bool {
	rel, err := filepath.Rel(r.workspaceRoot, filepath.Clean(p))
	if err != nil {
		return false
	}
	return !escapes(rel)
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}
