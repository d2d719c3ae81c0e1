package domain

import (
	"math/rand/v2"
	"strings"
)

const (
	maxSlugBase  = 40
	suffixLength = 5
	suffixChars  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Slugify lowercases name, collapses every run of non-alphanumerics to a single dash and
// trims dashes from both ends.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// exerciseID derives a catalog id from a display name: a bounded slug plus a random suffix.
func exerciseID(name string) string {
	base := Slugify(name)
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}
	if base == "" {
		base = "exercise"
	}
	return base + "-" + randomSuffix()
}

var randomSuffix = func() string {
	buf := make([]byte, suffixLength)
	for i := range buf {
		buf[i] = suffixChars[rand.IntN(len(suffixChars))]
	}
	return string(buf)
}
