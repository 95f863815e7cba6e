package stringutil

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

func IsAnyEmpty(strings ...string) bool {
	for _, s := range strings {
		if s == "" {
			return true
		}
	}
	return false
}

func RandomBytesString(max int) string {
	var bytes = make([]byte, max)

	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes)
}

// NormalizeID lowercases an identifier and replaces inner whitespace with
// underscores so it is safe to embed in file names.
func NormalizeID(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(s)), "_"))
}
