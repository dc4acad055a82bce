package main

import (
	"errors"
	"testing"
)

func TestCleanPatientRecordsDropsInvalidNHSNumbers(t *testing.T) {
	records := []PatientRecord{
		{NHSNumber: "4857773456", AgeBand: "Age 40-49", Gender: "1", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "", AgeBand: "Age 20-29", Gender: "2", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "9123456789", AgeBand: "Age 30-39", Gender: "1", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "9999999999", AgeBand: "Age 30-39", Gender: "2", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "1111111111", AgeBand: "Age 30-39", Gender: "2", RecordStart: date(2022, 1, 1)},
	}

	cleaned := cleanPatientRecords(records)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 record to survive cleaning, got %d", len(cleaned))
	}
	if cleaned[0].NHSNumber != "4857773456" {
		t.Fatalf("unexpected survivor: %s", cleaned[0].NHSNumber)
	}
}

func TestCleanPatientRecordsFillsMissingFields(t *testing.T) {
	records := []PatientRecord{
		{NHSNumber: "4857773456", AgeBand: "", Gender: "", Practice: "", LSOACode: "", RecordStart: date(2022, 1, 1)},
	}

	cleaned := cleanPatientRecords(records)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 record, got %d", len(cleaned))
	}
	record := cleaned[0]
	if record.Practice != unallocated {
		t.Fatalf("expected practice %q, got %q", unallocated, record.Practice)
	}
	if record.LSOACode != unallocated {
		t.Fatalf("expected LSOA %q, got %q", unallocated, record.LSOACode)
	}
	if record.AgeBand != unknownAge {
		t.Fatalf("expected age band %q, got %q", unknownAge, record.AgeBand)
	}
	if record.Gender != unknownGender {
		t.Fatalf("expected gender %q, got %q", unknownGender, record.Gender)
	}
}

func TestRemapAgeBand(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Age 40-49", "40-49"},
		{"Age 90 and over", "90+"},
		{"90 and over", "90+"},
		{"N/A", unknownAge},
		{"", unknownAge},
		{"0-9", "0-9"},
	}
	for _, tc := range cases {
		if got := remapAgeBand(tc.raw); got != tc.want {
			t.Fatalf("remapAgeBand(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestRemapGender(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1", "Male"},
		{"2", "Female"},
		{"0", unknownGender},
		{"9", unknownGender},
		{"", unknownGender},
	}
	for _, tc := range cases {
		if got := remapGender(tc.raw); got != tc.want {
			t.Fatalf("remapGender(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCleanPatientRecordsPreservesOrder(t *testing.T) {
	records := []PatientRecord{
		{NHSNumber: "4857773456", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "9999999999", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "6152349087", RecordStart: date(2022, 1, 1)},
		{NHSNumber: "7203941856", RecordStart: date(2022, 1, 1)},
	}

	cleaned := cleanPatientRecords(records)
	want := []string{"4857773456", "6152349087", "7203941856"}
	if len(cleaned) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(cleaned))
	}
	for i, nhsNumber := range want {
		if cleaned[i].NHSNumber != nhsNumber {
			t.Fatalf("position %d: expected %s, got %s", i, nhsNumber, cleaned[i].NHSNumber)
		}
	}
}

func TestDataFormatErrorUnwrap(t *testing.T) {
	inner := errors.New("bad date")
	err := &DataFormatError{Field: "record_start_date", Value: "31/02/2022", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("expected DataFormatError to unwrap to inner error")
	}
	var formatErr *DataFormatError
	if !errors.As(error(err), &formatErr) {
		t.Fatalf("expected errors.As to match *DataFormatError")
	}
}
