package boundary

import (
	"regexp"
	"strings"
)

// Reservation markers appended to some seat names in boundary data, checked
// in order: "Name SC" before "Name (SC)".
var reservationSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`\s+(SC|ST|OBC|GEN)$`),
	regexp.MustCompile(`\s+\((SC|ST|OBC|GEN)\)$`),
}

// NormalizeName strips one trailing reservation marker so a boundary seat
// name matches the spelling used by the representative tables. The marker
// must be separated from the name by whitespace. Exactly one marker is
// removed, so a name carrying two keeps the first of them.
//
//	NormalizeName("Kandhamal SC")   == "Kandhamal"
//	NormalizeName("Kandhamal (SC)") == "Kandhamal"
//	NormalizeName("Kandhamal")      == "Kandhamal"
//	NormalizeName("Kandhamal(SC)")  == "Kandhamal(SC)"
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	for _, re := range reservationSuffixes {
		if loc := re.FindStringIndex(name); loc != nil {
			name = name[:loc[0]]
			break
		}
	}
	return strings.TrimSpace(name)
}
