package pagemeta

import (
	"strings"
	"time"
)

// SiteInfo is the site-level context for head tags.
type SiteInfo struct {
	Title    string
	Lang     string
	Base     string
	Hostname string
}

func meta(property, content string) HeadTag {
	return HeadTag{Tag: "meta", Attrs: map[string]string{"property": property, "content": content}}
}

// HeadTags builds the Open Graph tags for a page. og:url is only emitted when
// the site hostname is known.
func HeadTags(site SiteInfo, pd PageData) []HeadTag {
	tags := make([]HeadTag, 0, 8)
	if site.Hostname != "" {
		tags = append(tags, meta("og:url", PageURL(site, pd.Path)))
	}
	if site.Title != "" {
		tags = append(tags, meta("og:site_name", site.Title))
	}
	tags = append(tags, meta("og:title", pd.Title))
	if pd.Description != "" {
		tags = append(tags, meta("og:description", pd.Description))
	}
	tags = append(tags, meta("og:type", "article"))
	if pd.Lang != "" {
		tags = append(tags, meta("og:locale", strings.ReplaceAll(pd.Lang, "-", "_")))
	}
	if pd.Git != nil && pd.Git.UpdatedTime > 0 {
		tags = append(tags, meta("article:modified_time", time.UnixMilli(pd.Git.UpdatedTime).UTC().Format(time.RFC3339)))
	}
	return tags
}

// PageURL joins hostname, site base and route into an absolute URL.
func PageURL(site SiteInfo, route string) string {
	base := strings.Trim(site.Base, "/")
	u := strings.TrimSuffix(site.Hostname, "/")
	if base != "" {
		u += "/" + base
	}
	return u + route
}
