package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// NoteExt is the only file extension picked up from the vault.
const NoteExt = ".md"

// ErrNotInVault is returned by LoadNote for paths outside the vault root.
var ErrNotInVault = errors.New("path is outside the vault")

// VaultLoader finds and parses notes under a vault root.
type VaultLoader struct {
	root   string
	ignore *IgnoreMatcher
	logger logrus.FieldLogger
}

// NewVaultLoader resolves root and loads its ignore files.
func NewVaultLoader(root string, ignoreFiles []string, logger logrus.FieldLogger) (*VaultLoader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault %s is not a directory", abs)
	}

	matcher, err := NewIgnoreMatcher(abs, nil, ignoreFiles...)
	if err != nil {
		return nil, err
	}

	return &VaultLoader{root: abs, ignore: matcher, logger: logger}, nil
}

// Root returns the absolute vault path.
func (l *VaultLoader) Root() string {
	return l.root
}

// Accept reports whether a vault-relative path should be ingested.
// Hidden segments, ignored paths and non-markdown files are rejected.
func (l *VaultLoader) Accept(rel string, isDir bool) bool {
	for _, seg := range splitPath(rel) {
		if strings.HasPrefix(seg, ".") {
			return false
		}
	}
	if l.ignore.ShouldIgnore(rel, isDir) {
		return false
	}
	return isDir || strings.EqualFold(filepath.Ext(rel), NoteExt)
}

// Walk calls fn for every accepted note in lexical order. Notes that fail to
// read are logged and skipped; an error from fn stops the walk.
func (l *VaultLoader) Walk(ctx context.Context, fn func(Note) error) error {
	return filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			l.logger.WithError(err).WithField("path", path).Warn("skipping unreadable vault entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == l.root {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		if !l.Accept(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		note, err := l.LoadNote(path)
		if err != nil {
			l.logger.WithError(err).WithField("source", rel).Warn("skipping note")
			return nil
		}
		return fn(note)
	})
}

// LoadNote reads and parses one note. A malformed front matter block is
// logged and the whole file is kept as the body.
func (l *VaultLoader) LoadNote(path string) (Note, error) {
	rel, err := l.relative(path)
	if err != nil {
		return Note{}, err
	}

	data, err := os.ReadFile(filepath.Join(l.root, rel))
	if err != nil {
		return Note{}, fmt.Errorf("reading note: %w", err)
	}

	note, err := ParseNote(filepath.ToSlash(rel), data)
	if err != nil {
		l.logger.WithError(err).WithField("source", note.Source).Warn("ignoring front matter")
	}
	return note, nil
}

func (l *VaultLoader) relative(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}
	rel, err := filepath.Rel(l.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrNotInVault, path)
	}
	return rel, nil
}
