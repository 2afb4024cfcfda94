package rosterdomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// GenerateAthleteID derives a deterministic athlete id from the identity
// fields, scoped to the event. The same athlete entered twice resolves to the
// same id, which is what makes re-imports land as updates. Invisible
// characters are stripped so "John​" and "John" compare equal.
func GenerateAthleteID(eventID, first, last string, number *int) string {
	f := cleanNamePart(first)
	l := cleanNamePart(last)

	n := "nonum"
	if number != nil {
		n = fmt.Sprintf("%d", *number)
	}

	raw := fmt.Sprintf("%s:%s:%s:%s", eventID, f, l, n)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:20]
}

func cleanNamePart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
