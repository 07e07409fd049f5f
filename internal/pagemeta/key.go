package pagemeta

import (
	"strings"

	"github.com/google/uuid"
)

var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("navbuilder:page"))

// KeyFor derives the stable page key for a route: "v-" plus eight hex digits
// of a name-based UUID. The same route always yields the same key.
func KeyFor(route string) string {
	id := uuid.NewSHA1(keyNamespace, []byte(route))
	return "v-" + strings.ReplaceAll(id.String(), "-", "")[:8]
}
