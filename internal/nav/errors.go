package nav

import (
	"errors"

	ferrors "git.home.luguber.info/inful/navbuilder/internal/foundation/errors"
)

// Sentinel causes wrapped by resolution errors; match them with errors.Is.
var (
	ErrMissingLink       = errors.New("link entry has no link")
	ErrMissingPrefix     = errors.New("group has no prefix but contains link or group children")
	ErrEmptySegment      = errors.New("path contains an empty segment")
	ErrInvalidCharacter  = errors.New("path contains a non-printable or reserved character")
	ErrEscapesRoot       = errors.New("path escapes the site root")
	ErrEmptyEntry        = errors.New("entry is empty")
	ErrUnknownField      = errors.New("entry has an unknown field")
	ErrDuplicateBase     = errors.New("sidebar base is defined more than once")
	ErrInvalidSidebarKey = errors.New("sidebar base must be an absolute path")
)

func entryError(cause error, loc string, pos Position, msg string) error {
	b := ferrors.ConfigError(msg).WithCause(cause).WithContext("entry", loc)
	if pos.Line > 0 {
		b = b.WithContext("line", pos.Line).WithContext("column", pos.Column)
	}
	return b.Build()
}
