package file

import (
	"errors"
)

// -- Sentinels --

var (
	ErrPathRequired  = errors.New("file_path is required")
	ErrIsDirectory   = errors.New("path is a directory")
	ErrNotRegular    = errors.New("path is not a regular file")
	ErrParentMissing = errors.New("parent directory does not exist")
)
