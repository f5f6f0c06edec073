// internal/utils/headers/parser.go
package headers

import (
	"fmt"
	"strings"
)

// ParseHeaders converts "Key: Value" flags into a header map. A later
// occurrence of the same key replaces an earlier one.
func ParseHeaders(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
		m[key] = strings.TrimSpace(value)
	}
	return m, nil
}
