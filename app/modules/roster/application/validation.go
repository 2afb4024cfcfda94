package rosterservice

import (
	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
)

// ValidateRecord classifies one normalized record against the file-wide column
// mapping. The transition is global-to-record: until every required identity
// field is mapped somewhere in the file, every record sits in
// AWAITING_REQUIRED_MAPPING and no record may report INVALID. Once the mapping
// crosses that line, records split into INVALID and VALID on their own data.
func ValidateRecord(mapping rosterdomain.ColumnMapping, record rosterdomain.NormalizedRecord) rosterdomain.ValidationState {
	if !mapping.RequiredComplete() {
		return rosterdomain.StateAwaitingRequiredMapping
	}

	if record.FirstName == "" || record.LastName == "" {
		return rosterdomain.StateInvalid
	}

	return rosterdomain.StateValid
}

// ValidateRecords recomputes validation states for a whole batch. Called every
// time the column mapping changes; it never re-parses the file.
func ValidateRecords(mapping rosterdomain.ColumnMapping, records []rosterdomain.NormalizedRecord) []rosterdomain.ValidationState {
	states := make([]rosterdomain.ValidationState, len(records))
	for i, record := range records {
		states[i] = ValidateRecord(mapping, record)
	}
	return states
}

// MissingRequiredErrors returns the per-row required-field messages for a
// record, but only once the mapping is complete. While the mapping is still
// incomplete these conditions are a workflow stage, not data defects, and must
// be suppressed from error-severity reporting.
func MissingRequiredErrors(mapping rosterdomain.ColumnMapping, record rosterdomain.NormalizedRecord) []rosterdomain.RowError {
	if !mapping.RequiredComplete() {
		return nil
	}

	var errs []rosterdomain.RowError
	if record.FirstName == "" {
		errs = append(errs, rosterdomain.RowError{Field: rosterdomain.FieldFirstName, Message: "missing first name"})
	}
	if record.LastName == "" {
		errs = append(errs, rosterdomain.RowError{Field: rosterdomain.FieldLastName, Message: "missing last name"})
	}
	return errs
}
