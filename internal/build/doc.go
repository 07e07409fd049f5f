// Package build runs the navbuilder pipeline: content discovery, navigation
// resolution, link checking, page metadata and output.
//
// All execution paths (CLI, watch mode, tests) go through Service. Each stage
// is timed and recorded; output is staged in a sibling directory and promoted
// only when every stage succeeded, so a failed build never replaces the
// previous result.
package build
