package main

import (
	"fmt"
	"strings"
	"time"
)

// PatientRecord is one version of a patient's opt-out record. A patient can
// have several versions with overlapping validity intervals; resolution picks
// one per snapshot date. Zero time values stand in for NULL dates.
type PatientRecord struct {
	NHSNumber   string
	AgeBand     string
	Gender      string
	Practice    string
	LSOACode    string
	DateOfDeath time.Time
	RecordStart time.Time
	RecordEnd   time.Time
}

const (
	unallocated   = "Unallocated"
	unknownGender = "Unknown / Prefer not to say"
	allCategory   = "All"
	allDeceased   = "All deceased"
	unknownAge    = "Unknown"
)

// Test-pattern NHS numbers that leak through from upstream systems; rows
// carrying one are not real patients.
var invalidNHSNumbers = map[string]struct{}{
	"1111111111": {},
	"2222222222": {},
	"3333333333": {},
	"4444444444": {},
	"5555555555": {},
	"6666666666": {},
	"7777777777": {},
	"8888888888": {},
	"9999999999": {},
}

// DataFormatError reports input that cannot be interpreted, such as an
// unparsable date or a missing required column. It always aborts the run.
type DataFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data format error in %s (%q): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("data format error in %s (%q)", e.Field, e.Value)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// cleanPatientRecords drops rows that cannot belong to a real patient and
// normalises the categorical columns so later joins and groupings line up.
// Input order is preserved; it is the tie-break for record resolution.
func cleanPatientRecords(records []PatientRecord) []PatientRecord {
	cleaned := make([]PatientRecord, 0, len(records))
	for _, record := range records {
		record.NHSNumber = strings.TrimSpace(record.NHSNumber)
		if !validNHSNumber(record.NHSNumber) {
			continue
		}
		record.Practice = strings.TrimSpace(record.Practice)
		if record.Practice == "" {
			record.Practice = unallocated
		}
		record.LSOACode = strings.TrimSpace(record.LSOACode)
		if record.LSOACode == "" {
			record.LSOACode = unallocated
		}
		record.AgeBand = remapAgeBand(record.AgeBand)
		record.Gender = remapGender(record.Gender)
		cleaned = append(cleaned, record)
	}
	return cleaned
}

func validNHSNumber(value string) bool {
	if value == "" {
		return false
	}
	if _, invalid := invalidNHSNumbers[value]; invalid {
		return false
	}
	return value[0] != '9'
}

// remapAgeBand reshapes upstream age labels ("Age 40-49", "Age 90 and over",
// "N/A") into the band names the publication uses.
func remapAgeBand(value string) string {
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "Age "))
	switch value {
	case "", "N/A", "N/":
		return unknownAge
	case "90 and over":
		return "90+"
	}
	return value
}

// remapGender translates coded gender values into publication categories.
// Anything outside the known codes is reported as undisclosed.
func remapGender(value string) string {
	switch strings.TrimSpace(value) {
	case "1", "Male":
		return "Male"
	case "2", "Female":
		return "Female"
	default:
		return unknownGender
	}
}
