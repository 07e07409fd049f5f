// Package errors provides the classified error primitives used across navbuilder.
//
// Every failure that reaches the CLI is a ClassifiedError carrying a category
// (config, content, git, ...), a severity, a retry strategy and a context map.
// Configuration errors additionally carry the location of the offending entry
// so the diagnostic points at the right line of the site configuration.
//
//	err := errors.ConfigError("group has no prefix").
//		WithContext("entry", `sidebar["/"][1]`).
//		WithContext("line", 12).
//		WithCause(nav.ErrMissingPrefix).
//		Build()
package errors
