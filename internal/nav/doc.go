// Package nav resolves declarative navigation specifications into route trees.
//
// A nav bar is an ordered list of entries; a sidebar is an ordered mapping from a
// base route to such a list. Entries are a tagged variant:
//
//   - KindPath: a bare string, shorthand for a link whose target is the string
//   - KindLink: {text, link, icon}
//   - KindGroup: {text, icon, prefix, link?, collapsible?, collapsed?, children}
//
// Resolution walks the tree once, joining every group prefix onto the prefix
// accumulated from its ancestors, and produces ResolvedRoute trees whose links
// are absolute site paths. Resolution is pure: the same input always produces
// the same tree, and the first malformed entry aborts with a classified config
// error naming the entry.
package nav
