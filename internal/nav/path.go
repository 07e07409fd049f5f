package nav

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// PrefixMode selects how a group prefix combines with its ancestors.
type PrefixMode string

const (
	// PrefixCompose joins every prefix onto the accumulated ancestor prefix.
	PrefixCompose PrefixMode = "compose"
	// PrefixAbsolute lets a prefix or link starting with "/" replace the
	// accumulated prefix, matching vuepress-theme-hope at runtime.
	PrefixAbsolute PrefixMode = "absolute"
)

var externalPrefixes = []string{"http://", "https://", "mailto:", "tel:", "//"}

// IsExternal reports whether a link points outside the site.
func IsExternal(link string) bool {
	lower := strings.ToLower(link)
	for _, p := range externalPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// checkPath validates a user-written prefix or link before it is joined.
func checkPath(p string) error {
	for _, r := range p {
		if r == '\\' || !unicode.IsPrint(r) {
			return ErrInvalidCharacter
		}
	}
	if strings.Contains(strings.Trim(p, "/"), "//") {
		return ErrEmptySegment
	}
	return nil
}

// JoinPath joins rel onto base with path-segment semantics: exactly one
// separator between segments, "." and ".." resolved, a leading separator always
// present, and a trailing separator only when the last written segment has one
// (or the result is the root). The result is NFC normalized.
func JoinPath(base, rel string, mode PrefixMode) (string, error) {
	if err := checkPath(rel); err != nil {
		return "", err
	}
	if mode == PrefixAbsolute && strings.HasPrefix(rel, "/") {
		base = ""
	}
	if rel == "" {
		return cleanPath(base, strings.HasSuffix(base, "/"))
	}
	return cleanPath(base+"/"+rel, strings.HasSuffix(rel, "/"))
}

func cleanPath(p string, trailing bool) (string, error) {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", ErrEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return "/", nil
	}
	joined := "/" + strings.Join(out, "/")
	if trailing {
		joined += "/"
	}
	return norm.NFC.String(joined), nil
}
