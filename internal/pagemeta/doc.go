// Package pagemeta computes the per-page data the renderer consumes: key,
// title, headers, description, reading time, git history, fingerprint and
// head meta tags.
package pagemeta
