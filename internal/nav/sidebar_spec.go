package nav

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SidebarSection is the entry list configured for one base route.
type SidebarSection struct {
	Base    string
	Entries []Entry
	Pos     Position
}

// SidebarSpec is an ordered mapping from base route to entries. A plain
// sequence in YAML is accepted as a single section under "/".
type SidebarSpec []SidebarSection

// UnmarshalYAML keeps the key order of the mapping.
func (s *SidebarSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var entries []Entry
		if err := value.Decode(&entries); err != nil {
			return err
		}
		*s = SidebarSpec{{Base: "/", Entries: entries, Pos: Position{Line: value.Line, Column: value.Column}}}
		return nil
	case yaml.MappingNode:
		out := make(SidebarSpec, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			var entries []Entry
			if err := val.Decode(&entries); err != nil {
				return err
			}
			out = append(out, SidebarSection{
				Base:    key.Value,
				Entries: entries,
				Pos:     Position{Line: key.Line, Column: key.Column},
			})
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("line %d: sidebar must be a mapping of base route to entries", value.Line)
	}
}

// MarshalYAML writes the spec back as a mapping in order.
func (s SidebarSpec) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, sec := range s {
		var val yaml.Node
		entries := sec.Entries
		if entries == nil {
			entries = []Entry{}
		}
		if err := val.Encode(entries); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sec.Base},
			&val,
		)
	}
	return node, nil
}
