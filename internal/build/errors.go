package build

import "errors"

// Sentinel causes of build failures. They are wrapped in classified errors
// with context at the call site.
var (
	ErrNoConfig       = errors.New("navbuilder: configuration required")
	ErrDanglingLinks  = errors.New("navbuilder: dangling links")
	ErrStaging        = errors.New("navbuilder: output staging failed")
	ErrPromoteStaging = errors.New("navbuilder: output promotion failed")
)
