package perk

import "strings"

// aliases maps retired perk codes to their current names. The mapping is
// append-only: once a code has been written to the log under an old name,
// its entry here must never be removed, or historical events lose meaning.
var aliases = map[string]string{
	"зп":  "salary",
	"вип": "vip",
}

// Normalize lower-cases and trims a perk code and resolves legacy aliases.
// Applied at write time (so new events carry current codes) and at read time
// (so events older than a rename still count).
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if current, ok := aliases[code]; ok {
		return current
	}
	return code
}
