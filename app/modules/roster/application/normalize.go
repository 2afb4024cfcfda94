package rosterservice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

const (
	minJerseyNumber = 0
	maxJerseyNumber = 9999
)

// NormalizeRow turns one raw row into a canonical record under the resolved
// mapping. Score values are merged in fixed precedence: carried-over scores
// from an existing record, then the nested score collection, then flat mapped
// drill columns. A value present in a later step overwrites an earlier one; an
// absent or empty cell never overwrites a present value.
func NormalizeRow(
	row rosterdomain.RawRow,
	headers []string,
	mapping rosterdomain.ColumnMapping,
	schema rosterdomain.EventSchema,
	existing *rosterdomain.ExistingAthlete,
) rosterdomain.NormalizedRecord {
	record := rosterdomain.NormalizedRecord{
		Row:          row.Line,
		Scores:       map[string]float64{},
		MappedFields: map[rosterdomain.CanonicalField]bool{},
	}

	for _, f := range mapping {
		if f.IsIdentity() {
			record.MappedFields[f] = true
		}
	}

	record.FirstName = identityCell(row, headers, mapping, rosterdomain.FieldFirstName)
	record.LastName = identityCell(row, headers, mapping, rosterdomain.FieldLastName)
	record.AgeGroup = identityCell(row, headers, mapping, rosterdomain.FieldAgeGroup)
	record.ExternalID = identityCell(row, headers, mapping, rosterdomain.FieldExternalID)
	record.TeamName = identityCell(row, headers, mapping, rosterdomain.FieldTeamName)
	record.Position = identityCell(row, headers, mapping, rosterdomain.FieldPosition)

	record.Number = extractNumber(row, headers, mapping, &record)

	// Step 1: carried-over scores from the existing record, if any.
	if existing != nil {
		for k, v := range existing.Scores {
			record.Scores[k] = v
		}
	}

	// Step 2: nested score collection, when the input format provides one.
	drillKeys := schema.DrillKeys()
	for key, val := range row.Scores {
		if drillKeys[key] {
			record.Scores[key] = val
		}
	}

	// Step 3: flat per-drill columns.
	for _, header := range headers {
		field := mapping[header]
		key := string(field)
		if !drillKeys[key] {
			continue
		}
		cell := strings.TrimSpace(row.Cells[header])
		if cell == "" {
			continue
		}
		val, ok := cleanNumeric(cell)
		if !ok {
			record.Errors = append(record.Errors, rosterdomain.RowError{
				Field:   field,
				Message: fmt.Sprintf("invalid number format for %q: %q", header, cell),
			})
			continue
		}
		if drill, declared := schema.Drill(key); declared {
			if drill.MinValue != nil && val < *drill.MinValue || drill.MaxValue != nil && val > *drill.MaxValue {
				record.Errors = append(record.Errors, rosterdomain.RowError{
					Field:   field,
					Message: fmt.Sprintf("value %v for %q out of range", val, header),
				})
				continue
			}
		}
		record.Scores[key] = val
	}

	return record
}

// MergeScores overlays incoming onto base using the overwrite-only-on-presence
// rule shared by the normalizer and the commit pipeline. Neither input map is
// modified.
func MergeScores(base, incoming map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(base)+len(incoming))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}

func identityCell(row rosterdomain.RawRow, headers []string, mapping rosterdomain.ColumnMapping, field rosterdomain.CanonicalField) string {
	header := mapping.HeaderFor(headers, field)
	if header == "" {
		return ""
	}
	return strings.TrimSpace(row.Cells[header])
}

// extractNumber pulls the jersey number from the mapped column, falling back to
// a fixed list of alternate header spellings when nothing is mapped. A missing
// number yields nil, which every downstream step must tolerate.
func extractNumber(row rosterdomain.RawRow, headers []string, mapping rosterdomain.ColumnMapping, record *rosterdomain.NormalizedRecord) *int {
	raw := identityCell(row, headers, mapping, rosterdomain.FieldNumber)

	if raw == "" {
		for _, alias := range rosterdomain.NumberSynonyms {
			for header, cell := range row.Cells {
				if rosterdomain.NormalizeHeader(header) == rosterdomain.NormalizeHeader(alias) {
					if v := strings.TrimSpace(cell); v != "" {
						raw = v
					}
					break
				}
			}
			if raw != "" {
				break
			}
		}
	}

	if raw == "" {
		return nil
	}

	num, err := parseJerseyNumber(raw)
	if err != nil {
		record.Errors = append(record.Errors, rosterdomain.RowError{
			Field:   rosterdomain.FieldNumber,
			Message: err.Error(),
		})
		return nil
	}
	return &num
}

// parseJerseyNumber accepts integer spellings including the "12.0" form that
// spreadsheet exports produce for numeric cells.
func parseJerseyNumber(raw string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid player number: %q", raw)
	}
	num := int(f)
	if float64(num) != f {
		return 0, fmt.Errorf("invalid player number: %q", raw)
	}
	if num < minJerseyNumber || num > maxJerseyNumber {
		return 0, fmt.Errorf("player number must be between %d and %d", minJerseyNumber, maxJerseyNumber)
	}
	return num, nil
}

var trailingUnitRe = regexp.MustCompile(`[a-z"%]+$`)

// cleanNumeric parses a score cell, correcting common formatting noise:
// trailing units ("4.52s", `9'2"`), European decimal commas ("4,52"), and
// doubled dots ("4..5").
func cleanNumeric(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	s = strings.TrimSpace(trailingUnitRe.ReplaceAllString(s, ""))
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "..", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
