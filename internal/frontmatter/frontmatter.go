// Package frontmatter splits YAML frontmatter from Markdown pages.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the page opened a frontmatter block but
// never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a Markdown page separated into frontmatter fields and body.
type Document struct {
	Fields map[string]any
	Body   []byte
	// Had reports whether the page carried a frontmatter block at all.
	Had bool
}

// Split separates `---` delimited frontmatter from the body. Both LF and CRLF
// line endings are accepted. Without a leading delimiter the whole input is
// the body.
func Split(content []byte) (fm, body []byte, had bool, err error) {
	nl := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline.
		if bytes.HasSuffix(rest, []byte(nl+"---")) {
			return rest[:len(rest)-3], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], true, nil
}

// ParseYAML decodes raw frontmatter into a map. Empty input yields an empty map.
func ParseYAML(fm []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits and decodes a page.
func Parse(content []byte) (Document, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return Document{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return Document{Fields: fields, Body: body, Had: had}, nil
}

// String returns a trimmed string field, or "" when absent or not a scalar.
func (d Document) String(key string) string {
	switch v := d.Fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns a boolean field, or def when absent or not a boolean.
func (d Document) Bool(key string, def bool) bool {
	if v, ok := d.Fields[key].(bool); ok {
		return v
	}
	return def
}
