package nav

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ResolvedRoute is a node of a resolved nav bar or sidebar.
type ResolvedRoute struct {
	Text        string          `json:"text" yaml:"text"`
	Link        string          `json:"link,omitempty" yaml:"link,omitempty"`
	Icon        string          `json:"icon,omitempty" yaml:"icon,omitempty"`
	Prefix      string          `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Collapsible bool            `json:"collapsible" yaml:"collapsible"`
	Collapsed   bool            `json:"collapsed" yaml:"collapsed"`
	External    bool            `json:"external,omitempty" yaml:"external,omitempty"`
	Children    []ResolvedRoute `json:"children,omitempty" yaml:"children,omitempty"`

	// Source is the configuration location the route came from.
	Source string `json:"-" yaml:"-"`
}

// IsGroup reports whether the route was produced by a group entry.
func (r ResolvedRoute) IsGroup() bool { return r.Children != nil }

// MarshalJSON always writes children for groups, so an empty group stays
// distinguishable from a leaf.
func (r ResolvedRoute) MarshalJSON() ([]byte, error) {
	type plain ResolvedRoute
	if !r.IsGroup() {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Children []ResolvedRoute `json:"children"`
	}{plain(r), r.Children})
}

// Walk visits every route depth-first in order. Returning false from fn skips
// the route's children.
func Walk(routes []ResolvedRoute, fn func(ResolvedRoute) bool) {
	for _, r := range routes {
		if fn(r) {
			Walk(r.Children, fn)
		}
	}
}

// Links returns every internal link in the tree in order.
func Links(routes []ResolvedRoute) []ResolvedRoute {
	var out []ResolvedRoute
	Walk(routes, func(r ResolvedRoute) bool {
		if r.Link != "" && !r.External {
			out = append(out, r)
		}
		return true
	})
	return out
}

// Sidebar is the resolved tree for one base route.
type Sidebar struct {
	Base   string          `json:"base" yaml:"base"`
	Routes []ResolvedRoute `json:"routes" yaml:"routes"`
}

// Sidebars holds the resolved sidebars in configuration order.
type Sidebars []Sidebar

// For returns the sidebar whose base is the longest prefix of route.
func (s Sidebars) For(route string) (Sidebar, bool) {
	best := -1
	for i, sb := range s {
		if !covers(sb.Base, route) {
			continue
		}
		if best < 0 || len(sb.Base) > len(s[best].Base) {
			best = i
		}
	}
	if best < 0 {
		return Sidebar{}, false
	}
	return s[best], true
}

// covers reports whether route lies in the section rooted at base, matching
// whole path segments only.
func covers(base, route string) bool {
	switch {
	case route == base, route+"/" == base:
		return true
	case strings.HasSuffix(base, "/"):
		return strings.HasPrefix(route, base)
	default:
		return strings.HasPrefix(route, base+"/")
	}
}

// MarshalJSON writes the sidebars as an object keyed by base, in configuration
// order, which is the shape the renderer consumes.
func (s Sidebars) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sb := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sb.Base)
		if err != nil {
			return nil, err
		}
		routes := sb.Routes
		if routes == nil {
			routes = []ResolvedRoute{}
		}
		val, err := json.Marshal(routes)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
