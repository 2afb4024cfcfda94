package rosterdomain

import (
	"regexp"
	"strings"
)

// CanonicalField is a normalized field name that import data resolves into,
// independent of how the source spreadsheet spelled its header. Identity fields
// are a closed set; drill score fields are open-ended and declared by the
// event's scoring schema, so any schema drill key is also a valid CanonicalField.
type CanonicalField string

const (
	FieldFirstName  CanonicalField = "first_name"
	FieldLastName   CanonicalField = "last_name"
	FieldNumber     CanonicalField = "number"
	FieldAgeGroup   CanonicalField = "age_group"
	FieldExternalID CanonicalField = "external_id"
	FieldTeamName   CanonicalField = "team_name"
	FieldPosition   CanonicalField = "position"

	// FieldIgnore is the sentinel for headers that resolve to nothing.
	FieldIgnore CanonicalField = "__ignore__"
)

// RequiredFields are the identity fields that must be mapped before any row can
// be reported as invalid rather than merely incomplete.
var RequiredFields = []CanonicalField{FieldFirstName, FieldLastName}

// IsIdentity reports whether f is one of the closed identity fields.
func (f CanonicalField) IsIdentity() bool {
	switch f {
	case FieldFirstName, FieldLastName, FieldNumber, FieldAgeGroup,
		FieldExternalID, FieldTeamName, FieldPosition:
		return true
	}
	return false
}

// SynonymTable maps separator-normalized header spellings to canonical fields.
// Both table keys and lookups pass through NormalizeHeader, so an entry declared
// with one separator style covers underscore, hyphen, and space variants alike.
type SynonymTable map[string]CanonicalField

// NumberSynonyms are the alternate spellings tried as a fallback when no column
// was explicitly mapped to the jersey number field.
var NumberSynonyms = []string{"player_number", "jersey", "jersey_number", "no", "num", "#", "jersey_#"}

// DefaultSynonyms returns the stock synonym table. Entries are declared in a
// single separator style; NormalizeHeader makes the variants equivalent.
func DefaultSynonyms() SynonymTable {
	raw := map[CanonicalField][]string{
		FieldFirstName:  {"first_name", "first", "fname", "firstname"},
		FieldLastName:   {"last_name", "last", "lname", "lastname"},
		FieldNumber:     {"number", "num", "no", "#", "jersey", "jersey_number", "jersey_#", "player_number"},
		FieldAgeGroup:   {"age_group", "age", "agegroup", "group", "division", "grade", "class"},
		FieldExternalID: {"external_id", "athlete_id", "bib", "bib_number", "bib_no", "bib_#", "bibno", "participants_#"},
		FieldTeamName:   {"team", "team_name", "squad"},
		FieldPosition:   {"position", "pos"},
	}

	table := make(SynonymTable)
	for field, spellings := range raw {
		for _, s := range spellings {
			table[NormalizeHeader(s)] = field
		}
	}
	return table
}

// Lookup resolves a raw header against the table, returning FieldIgnore when
// nothing matches.
func (t SynonymTable) Lookup(header string) (CanonicalField, bool) {
	f, ok := t[NormalizeHeader(header)]
	if !ok {
		return FieldIgnore, false
	}
	return f, true
}

var unitSuffixRe = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// NormalizeHeader lowercases, trims, strips a parenthesized unit suffix
// ("Lane Agility (sec)" -> "lane agility"), and collapses underscore, hyphen,
// and space runs into single underscores so separator variants compare equal.
func NormalizeHeader(header string) string {
	h := unitSuffixRe.ReplaceAllString(header, " ")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("-", "_", " ", "_").Replace(h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return strings.Trim(h, "_")
}
