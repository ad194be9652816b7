package feature

import "errors"

var (
	ErrUnknownNode = errors.New("checklist node does not exist")
	ErrDepth       = errors.New("checklist path is deeper than feature→noun→adjective")
	ErrEmptyPath   = errors.New("checklist path is empty")
)

// ErrEmptyReplacement is returned for a rename without a usable new name.
var ErrEmptyReplacement = errors.New("rename needs a replacement without the path separator")
