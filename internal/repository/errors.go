package repository

import "errors"

var (
	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOutsideRoot is returned for paths that leave the dataset root.
	ErrOutsideRoot = errors.New("path is outside the dataset")
	// ErrDirNotFound is returned when a target directory does not exist.
	ErrDirNotFound = errors.New("directory does not exist")
)
