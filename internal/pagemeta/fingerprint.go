package pagemeta

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/navbuilder/internal/frontmatter"
)

// Frontmatter keys that change on every regeneration and so stay out of the
// fingerprint.
var volatileKeys = map[string]struct{}{
	mdfp.FingerprintField: {},
	"lastmod":             {},
	"lastUpdated":         {},
}

// Fingerprint computes the content fingerprint of a page from its frontmatter
// and body. Equal pages always yield equal fingerprints.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := volatileKeys[k]; !skip {
			hashed[k] = v
		}
	}
	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.SerializeYAML(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}
