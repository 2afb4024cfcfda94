package rosterdomain

import "strings"

// RawRow is one parsed spreadsheet row: original header -> raw cell value, plus
// an optional nested score collection when the input format provides one (the
// JSON upload path historically sent scores both flat and nested). Immutable
// once read.
type RawRow struct {
	// Line is the 1-based row number in the source file, headers excluded.
	Line  int
	Cells map[string]string
	// Scores is the nested drill->value collection, nil when the source is flat.
	Scores map[string]float64
}

// RawTable is the parsed tabular input handed to the engine by a file parser.
type RawTable struct {
	Headers []string
	Rows    []RawRow
}

// ColumnMapping maps original headers to canonical fields; headers absent from
// the map are treated as FieldIgnore. One mapping applies to a whole upload and
// is frozen before normalization.
type ColumnMapping map[string]CanonicalField

// HeaderFor returns the first header mapped to the given field, in the order of
// headers; empty string when the field is unmapped.
func (m ColumnMapping) HeaderFor(headers []string, field CanonicalField) string {
	for _, h := range headers {
		if m[h] == field {
			return h
		}
	}
	return ""
}

// FieldMapped reports whether any header resolves to the given canonical field.
func (m ColumnMapping) FieldMapped(field CanonicalField) bool {
	for _, f := range m {
		if f == field {
			return true
		}
	}
	return false
}

// RequiredComplete reports whether every required identity field is mapped.
func (m ColumnMapping) RequiredComplete() bool {
	for _, f := range RequiredFields {
		if !m.FieldMapped(f) {
			return false
		}
	}
	return true
}

// RowError is a recoverable, row-scoped condition recorded during
// normalization or validation. It never aborts the batch.
type RowError struct {
	Field   CanonicalField `json:"field,omitempty"`
	Message string         `json:"message"`
}

// NormalizedRecord is the canonical form of one row after column mapping and
// score merging. Immutable after normalization.
type NormalizedRecord struct {
	Row        int
	FirstName  string
	LastName   string
	Number     *int
	AgeGroup   string
	ExternalID string
	TeamName   string
	Position   string
	Scores     map[string]float64
	Errors     []RowError

	// MappedFields records which identity fields were actually mapped for this
	// import; the commit pipeline only overwrites identity fields present here.
	MappedFields map[CanonicalField]bool
}

// IdentityKey is the derived tuple used only for duplicate comparison. Two
// records compare equal as athletes only when the number component is non-null
// on both sides; HasNumber false keys never match stored roster entries.
type IdentityKey struct {
	First     string
	Last      string
	Number    int
	HasNumber bool
}

// Identity derives the record's identity key.
func (r NormalizedRecord) Identity() IdentityKey {
	key := IdentityKey{
		First: strings.ToLower(strings.TrimSpace(r.FirstName)),
		Last:  strings.ToLower(strings.TrimSpace(r.LastName)),
	}
	if r.Number != nil {
		key.Number = *r.Number
		key.HasNumber = true
	}
	return key
}

// ValidationState classifies a normalized record relative to the file-wide
// column mapping.
type ValidationState string

const (
	// StateAwaitingRequiredMapping means a required identity field is not yet
	// mapped anywhere in the file. A workflow stage, not a data defect: rows in
	// this state are "incomplete", never "invalid".
	StateAwaitingRequiredMapping ValidationState = "AWAITING_REQUIRED_MAPPING"
	StateInvalid                 ValidationState = "INVALID"
	StateValid                   ValidationState = "VALID"
)

// ExistingAthlete is the read model of a stored roster entry used for
// reconciliation.
type ExistingAthlete struct {
	ID         string
	FirstName  string
	LastName   string
	Number     *int
	AgeGroup   string
	ExternalID string
	TeamName   string
	Position   string
	Scores     map[string]float64
}

// Identity derives the stored athlete's identity key.
func (a ExistingAthlete) Identity() IdentityKey {
	key := IdentityKey{
		First: strings.ToLower(strings.TrimSpace(a.FirstName)),
		Last:  strings.ToLower(strings.TrimSpace(a.LastName)),
	}
	if a.Number != nil {
		key.Number = *a.Number
		key.HasNumber = true
	}
	return key
}

// DecisionKind is the reconciliation outcome for one row.
type DecisionKind string

const (
	DecisionNew           DecisionKind = "NEW"
	DecisionUpdate        DecisionKind = "UPDATE"
	DecisionSkipDuplicate DecisionKind = "SKIP_DUPLICATE"
	// DecisionNeedsReview is produced only under the review policy for
	// same-named rows that both lack jersey numbers.
	DecisionNeedsReview DecisionKind = "NEEDS_REVIEW"
)

// Decision is the per-row reconciliation result. Output order matches input
// row order 1:1.
type Decision struct {
	Row  int
	Kind DecisionKind
	// TargetID is the existing athlete id for UPDATE decisions.
	TargetID string
	// DuplicateOfRow references the earlier batch row for SKIP_DUPLICATE and
	// NEEDS_REVIEW decisions.
	DuplicateOfRow int
}

// SkipRef ties a skipped row to the row it duplicates, for the summary.
type SkipRef struct {
	Row            int `json:"row"`
	DuplicateOfRow int `json:"duplicate_of_row"`
}

// RowFailure records a per-row commit failure. Disjoint from skips.
type RowFailure struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportSummary is the immutable result of one commit pipeline run.
type ImportSummary struct {
	TotalRows     int          `json:"total_rows"`
	Created       int          `json:"created"`
	Updated       int          `json:"updated"`
	Skipped       int          `json:"skipped"`
	NeedsReview   int          `json:"needs_review,omitempty"`
	Failed        int          `json:"failed"`
	ScoresWritten int          `json:"scores_written"`
	Skips         []SkipRef    `json:"skips,omitempty"`
	Failures      []RowFailure `json:"failures,omitempty"`
}
