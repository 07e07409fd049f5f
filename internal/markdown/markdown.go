// Package markdown wraps goldmark for the page analysis navbuilder performs:
// titles, section headings and rendered HTML.
package markdown

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Heading is a section heading of a page.
type Heading struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse parses a Markdown body (frontmatter already removed) into an AST.
func Parse(body []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(body))
}

// RenderHTML renders a body to HTML with GitHub flavoured extensions.
func RenderHTML(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Headings returns every heading up to maxLevel in document order. Slugs are
// unique within the page; repeats get a numeric suffix.
func Headings(body []byte, maxLevel int) []Heading {
	root := Parse(body)
	seen := map[string]int{}
	var out []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level <= maxLevel {
			title := plainText(h, body)
			slug := Slugify(title)
			if c := seen[slug]; c > 0 {
				seen[slug] = c + 1
				slug = slug + "-" + strconv.Itoa(c)
			} else {
				seen[slug] = 1
			}
			out = append(out, Heading{Level: h.Level, Title: title, Slug: slug})
		}
		return gmast.WalkSkipChildren, nil
	})
	return out
}

// Title returns the text of the first level-one heading, or "".
func Title(body []byte) string {
	for _, h := range Headings(body, 1) {
		if h.Level == 1 {
			return h.Title
		}
	}
	return ""
}

// Slugify turns heading text into an anchor: lower case, letters and digits
// kept (any script), runs of everything else collapsed into one '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func plainText(n gmast.Node, src []byte) string {
	var b strings.Builder
	var walk func(gmast.Node)
	walk = func(n gmast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *gmast.Text:
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *gmast.String:
				b.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
