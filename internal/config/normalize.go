package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/navbuilder/internal/foundation/normalization"
	"git.home.luguber.info/inful/navbuilder/internal/nav"
)

// NormalizationResult captures coercions made while normalizing a config.
type NormalizationResult struct{ Warnings []string }

var prefixModeNormalizer = normalization.NewNormalizer("resolve.prefix_mode", map[string]nav.PrefixMode{
	"compose":  nav.PrefixCompose,
	"absolute": nav.PrefixAbsolute,
}, nav.PrefixCompose)

// NormalizeConfig canonicalizes enumerated and bounded fields in place. An
// unknown prefix mode is an error because it changes every resolved link;
// unknown log settings fall back with a warning.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}

	mode, err := prefixModeNormalizer.Parse(string(c.Resolve.PrefixMode))
	if err != nil {
		return nil, err
	}
	c.Resolve.PrefixMode = mode

	lvl := NormalizeLogLevel(string(c.Monitoring.Logging.Level))
	if raw := string(c.Monitoring.Logging.Level); raw != "" && raw != string(lvl) {
		res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", raw, lvl))
	}
	c.Monitoring.Logging.Level = lvl

	format := NormalizeLogFormat(string(c.Monitoring.Logging.Format))
	if raw := string(c.Monitoring.Logging.Format); raw != "" && raw != string(format) {
		res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", raw, format))
	}
	c.Monitoring.Logging.Format = format

	c.Content.Extensions = normalizeExtensions(c.Content.Extensions, res)
	c.Site.Lang = strings.TrimSpace(c.Site.Lang)

	if c.Metadata.Concurrency < 0 {
		res.Warnings = append(res.Warnings, warnChanged("metadata.concurrency", c.Metadata.Concurrency, 0))
		c.Metadata.Concurrency = 0
	}
	if c.Metadata.ExcerptLength < 0 {
		res.Warnings = append(res.Warnings, warnChanged("metadata.excerpt_length", c.Metadata.ExcerptLength, 0))
		c.Metadata.ExcerptLength = 0
	}
	return res, nil
}

// normalizeExtensions lower-cases, dot-prefixes, dedupes and sorts content
// file extensions.
func normalizeExtensions(in []string, res *NormalizationResult) []string {
	fixed := make([]string, 0, len(in))
	for _, ext := range in {
		e := strings.ToLower(strings.TrimSpace(ext))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		fixed = append(fixed, e)
	}
	return normalizeStringSlice("content.extensions", fixed, res)
}

// normalizeStringSlice trims, dedupes and sorts a string slice, recording a
// warning when entries are dropped.
func normalizeStringSlice(label string, in []string, res *NormalizationResult) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		t := strings.TrimSpace(v)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) != len(in) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s list (%d -> %d entries)", label, len(in), len(out)))
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}
