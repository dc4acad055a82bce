package main

import "time"

// MonthlyRecord is a resolved patient record tagged with the snapshot date it
// was resolved for.
type MonthlyRecord struct {
	PatientRecord
	AchDate time.Time
}

// sliceActiveRecords keeps records whose validity interval contains the
// snapshot date. An open end date means the record is still valid.
func sliceActiveRecords(records []PatientRecord, date time.Time) []PatientRecord {
	var active []PatientRecord
	for _, record := range records {
		if record.RecordStart.After(date) {
			continue
		}
		if !record.RecordEnd.IsZero() && record.RecordEnd.Before(date) {
			continue
		}
		active = append(active, record)
	}
	return active
}

// filterLivingPatients keeps records for patients alive on the snapshot date:
// no date of death, or a death date strictly after the snapshot.
func filterLivingPatients(records []PatientRecord, date time.Time) []PatientRecord {
	var living []PatientRecord
	for _, record := range records {
		if record.DateOfDeath.IsZero() || record.DateOfDeath.After(date) {
			living = append(living, record)
		}
	}
	return living
}

func filterDeceasedPatients(records []PatientRecord, date time.Time) []PatientRecord {
	var deceased []PatientRecord
	for _, record := range records {
		if !record.DateOfDeath.IsZero() && !record.DateOfDeath.After(date) {
			deceased = append(deceased, record)
		}
	}
	return deceased
}

// mostRecentRecordPerPatient keeps exactly one record per NHS number: the one
// with the latest validity start. When two records share a start date the
// earlier one in input order wins, the same way a ranked window keeps the
// first row it saw. The output preserves first-seen patient order so repeated
// runs produce identical tables.
func mostRecentRecordPerPatient(records []PatientRecord) []PatientRecord {
	index := make(map[string]int, len(records))
	var resolved []PatientRecord
	for _, record := range records {
		at, seen := index[record.NHSNumber]
		if !seen {
			index[record.NHSNumber] = len(resolved)
			resolved = append(resolved, record)
			continue
		}
		if record.RecordStart.After(resolved[at].RecordStart) {
			resolved[at] = record
		}
	}
	return resolved
}

// resolveLivingRecords produces the current record of every patient alive on
// the snapshot date.
func resolveLivingRecords(records []PatientRecord, date time.Time) []PatientRecord {
	return mostRecentRecordPerPatient(filterLivingPatients(sliceActiveRecords(records, date), date))
}

// resolveDeceasedRecords produces the current record of every patient who died
// on or before the snapshot date. This is an independent slice-and-dedup pass,
// not the complement of the living set: the most recent record can differ
// between the two views.
func resolveDeceasedRecords(records []PatientRecord, date time.Time) []PatientRecord {
	return mostRecentRecordPerPatient(filterDeceasedPatients(sliceActiveRecords(records, date), date))
}

type resolverFunc func([]PatientRecord, time.Time) []PatientRecord

// concatenateMonthlyRecords resolves the record set at every snapshot date and
// concatenates the results into one long table, each row tagged with its
// snapshot date. Snapshot order is the window order, so the concatenation is
// deterministic.
func concatenateMonthlyRecords(resolve resolverFunc, records []PatientRecord, months []time.Time) []MonthlyRecord {
	var combined []MonthlyRecord
	for _, month := range months {
		for _, record := range resolve(records, month) {
			combined = append(combined, MonthlyRecord{PatientRecord: record, AchDate: month})
		}
	}
	return combined
}
