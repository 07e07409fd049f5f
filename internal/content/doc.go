// Package content indexes the Markdown tree of a site so resolved navigation
// links can be checked against real pages.
package content
