package content

import "errors"

var (
	// ErrContentDirNotFound indicates content.dir does not exist.
	ErrContentDirNotFound = errors.New("content directory not found")

	// ErrWalkFailed indicates traversal of the content tree failed.
	ErrWalkFailed = errors.New("content directory walk failed")

	// ErrPathCollision indicates two files map to the same route, for example
	// README.md and index.md in one directory.
	ErrPathCollision = errors.New("route collision detected")
)
