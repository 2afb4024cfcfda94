package rosterservice

import (
	"strings"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// MappingResolution is the outcome of resolving raw headers to canonical
// fields. SuggestedDrillColumns is advisory only: headers that resolved to
// nothing but look like they could carry numeric drill results.
type MappingResolution struct {
	Mapping               rosterdomain.ColumnMapping
	SuggestedDrillColumns []string
}

// ResolveMapping produces the header->field mapping for an upload. Explicit
// user overrides win; otherwise the synonym table is consulted, then the
// event schema's drill keys and labels. Pure function of its inputs.
func ResolveMapping(
	headers []string,
	overrides map[string]rosterdomain.CanonicalField,
	table rosterdomain.SynonymTable,
	schema rosterdomain.EventSchema,
) MappingResolution {
	mapping := make(rosterdomain.ColumnMapping, len(headers))
	var suggestions []string

	labelIndex := schema.LabelIndex()

	for _, header := range headers {
		if field, ok := overrides[header]; ok {
			mapping[header] = field
			continue
		}

		if field, ok := table.Lookup(header); ok {
			mapping[header] = field
			continue
		}

		if key, ok := labelIndex[rosterdomain.NormalizeHeader(header)]; ok {
			mapping[header] = rosterdomain.CanonicalField(key)
			continue
		}

		mapping[header] = rosterdomain.FieldIgnore
		if looksNumericish(header) {
			suggestions = append(suggestions, header)
		}
	}

	return MappingResolution{Mapping: mapping, SuggestedDrillColumns: suggestions}
}

// looksNumericish flags headers that plausibly title a per-drill numeric
// column: a digit in the name ("40 Yard 1") or a unit suffix ("Sprint (sec)").
func looksNumericish(header string) bool {
	if strings.ContainsAny(header, "0123456789") {
		return true
	}
	return strings.Contains(header, "(") && strings.Contains(header, ")")
}
