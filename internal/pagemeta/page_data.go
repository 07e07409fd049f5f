package pagemeta

import (
	"encoding/json"

	"git.home.luguber.info/inful/navbuilder/internal/gitinfo"
)

// PageData is the metadata record written for one page.
type PageData struct {
	Key              string            `json:"key"`
	Path             string            `json:"path"`
	Title            string            `json:"title"`
	Lang             string            `json:"lang"`
	Frontmatter      map[string]any    `json:"frontmatter"`
	Description      string            `json:"description,omitempty"`
	Excerpt          string            `json:"excerpt,omitempty"`
	Headers          []Header          `json:"headers"`
	ReadingTime      ReadingTime       `json:"readingTime"`
	Git              *gitinfo.FileInfo `json:"git,omitempty"`
	FilePathRelative string            `json:"filePathRelative"`
	Fingerprint      string            `json:"fingerprint"`
	Head             []HeadTag         `json:"head"`
}

// Header is a level-two heading with its level-three children.
type Header struct {
	Level    int      `json:"level"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Link     string   `json:"link"`
	Children []Header `json:"children"`
}

// ReadingTime estimates how long a page takes to read.
type ReadingTime struct {
	Minutes float64 `json:"minutes"`
	Words   int     `json:"words"`
}

// HeadTag is an extra element for the page <head>. It serializes as
// ["meta", {"property": ..., "content": ...}].
type HeadTag struct {
	Tag   string
	Attrs map[string]string
}

func (h HeadTag) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{h.Tag, h.Attrs})
}

func (h *HeadTag) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw[0], &h.Tag); err != nil {
			return err
		}
	}
	if len(raw) > 1 {
		return json.Unmarshal(raw[1], &h.Attrs)
	}
	return nil
}

// Summary is the pages.json index entry for one page.
type Summary struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Title string `json:"title"`
}
