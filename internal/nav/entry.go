package nav

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind tags the variant held by an Entry.
type Kind int

const (
	// KindInvalid is the zero value; YAML nulls decode to it and fail resolution.
	KindInvalid Kind = iota
	KindPath
	KindLink
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPath:
		return "path"
	case KindLink:
		return "link"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Position is the source location of an entry in the configuration file.
type Position struct {
	Line   int
	Column int
}

// Entry is one node of a nav bar or sidebar specification. For KindPath the
// bare string is held in Link.
type Entry struct {
	Kind        Kind
	Text        string
	Link        string
	Icon        string
	Prefix      string
	Collapsible *bool
	Collapsed   *bool
	Children    []Entry
	Pos         Position
}

// Path returns the bare-string shorthand entry.
func Path(p string) Entry { return Entry{Kind: KindPath, Link: p} }

// Link returns a leaf link entry.
func Link(text, link string) Entry { return Entry{Kind: KindLink, Text: text, Link: link} }

// Group returns a group entry with the given prefix and children.
func Group(text, prefix string, children ...Entry) Entry {
	if children == nil {
		children = []Entry{}
	}
	return Entry{Kind: KindGroup, Text: text, Prefix: prefix, Children: children}
}

// WithCollapse returns a copy of a group with explicit display flags.
func (e Entry) WithCollapse(collapsible, collapsed bool) Entry {
	e.Collapsible = &collapsible
	e.Collapsed = &collapsed
	return e
}

var entryFields = map[string]struct{}{
	"text": {}, "link": {}, "icon": {}, "prefix": {},
	"collapsible": {}, "collapsed": {}, "children": {},
}

type entryFieldsYAML struct {
	Text        string  `yaml:"text"`
	Link        string  `yaml:"link"`
	Icon        string  `yaml:"icon"`
	Prefix      string  `yaml:"prefix"`
	Collapsible *bool   `yaml:"collapsible"`
	Collapsed   *bool   `yaml:"collapsed"`
	Children    []Entry `yaml:"children"`
}

// UnmarshalYAML decodes a scalar into KindPath and a mapping into KindLink or,
// when it has a children key, KindGroup. Semantic checks (missing link or
// prefix, malformed paths) happen during resolution so they can report the
// entry location.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	pos := Position{Line: value.Line, Column: value.Column}
	switch value.Kind {
	case yaml.ScalarNode:
		*e = Entry{Kind: KindPath, Link: value.Value, Pos: pos}
		return nil
	case yaml.MappingNode:
		hasChildren := false
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i].Value
			if _, ok := entryFields[key]; !ok {
				return fmt.Errorf("line %d: %w: %q", value.Content[i].Line, ErrUnknownField, key)
			}
			if key == "children" {
				hasChildren = true
			}
		}
		var raw entryFieldsYAML
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*e = Entry{
			Kind:        KindLink,
			Text:        raw.Text,
			Link:        raw.Link,
			Icon:        raw.Icon,
			Prefix:      raw.Prefix,
			Collapsible: raw.Collapsible,
			Collapsed:   raw.Collapsed,
			Pos:         pos,
		}
		if hasChildren {
			e.Kind = KindGroup
			e.Children = raw.Children
			if e.Children == nil {
				e.Children = []Entry{}
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: navigation entry must be a string or a mapping", value.Line)
	}
}

type linkYAML struct {
	Text string `yaml:"text,omitempty"`
	Icon string `yaml:"icon,omitempty"`
	Link string `yaml:"link"`
}

type groupYAML struct {
	Text        string  `yaml:"text,omitempty"`
	Icon        string  `yaml:"icon,omitempty"`
	Prefix      string  `yaml:"prefix,omitempty"`
	Link        string  `yaml:"link,omitempty"`
	Collapsible *bool   `yaml:"collapsible,omitempty"`
	Collapsed   *bool   `yaml:"collapsed,omitempty"`
	Children    []Entry `yaml:"children"`
}

// MarshalYAML writes the inverse of UnmarshalYAML.
func (e Entry) MarshalYAML() (any, error) {
	switch e.Kind {
	case KindPath:
		return e.Link, nil
	case KindLink:
		return linkYAML{Text: e.Text, Icon: e.Icon, Link: e.Link}, nil
	case KindGroup:
		children := e.Children
		if children == nil {
			children = []Entry{}
		}
		return groupYAML{
			Text: e.Text, Icon: e.Icon, Prefix: e.Prefix, Link: e.Link,
			Collapsible: e.Collapsible, Collapsed: e.Collapsed, Children: children,
		}, nil
	default:
		return nil, fmt.Errorf("cannot marshal entry of %s", e.Kind)
	}
}
