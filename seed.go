package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// seedDatabase loads a small synthetic dataset so the pipeline can run end to
// end against a fresh local database. Nothing is inserted when patient
// records are already present.
func seedDatabase(ctx context.Context, db *sql.DB, schema string, dates ReportDates) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s.patient_records`, schema)).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	months := dates.ReportingMonths()
	if len(months) == 0 {
		return false, fmt.Errorf("reporting window %s - %s contains no months",
			dates.StartDate.Format("2006-01-02"), dates.EndDate.Format("2006-01-02"))
	}
	windowStart := months[0]
	midWindow := months[len(months)/2]

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	type patientSeed struct {
		nhsNumber string
		ageBand   string
		gender    string
		practice  string
		lsoa      string
		death     time.Time
		start     time.Time
		end       time.Time
	}
	patients := []patientSeed{
		// Two overlapping versions; the later start wins resolution.
		{"4857773456", "Age 40-49", "2", "A81001", "E01000001", time.Time{}, windowStart.AddDate(-1, 0, 0), time.Time{}},
		{"4857773456", "Age 50-59", "2", "A81001", "E01000001", time.Time{}, windowStart.AddDate(0, 1, 0), time.Time{}},
		{"6152349087", "Age 20-29", "1", "A81001", "E01000002", time.Time{}, windowStart.AddDate(-2, 0, 0), time.Time{}},
		{"7203941856", "Age 70-79", "1", "B82002", "E01000002", midWindow, windowStart.AddDate(-3, 0, 0), time.Time{}},
		{"5031287694", "Age 90 and over", "2", "B82002", "E01000003", time.Time{}, windowStart, time.Time{}},
		{"3820561743", "N/A", "0", "", "", time.Time{}, windowStart.AddDate(0, 2, 0), time.Time{}},
		// Closed record, only active early in the window.
		{"2174830965", "Age 30-39", "1", "A81001", "E01000001", time.Time{}, windowStart.AddDate(-1, 0, 0), windowStart.AddDate(0, 2, -1)},
		// Test-pattern rows the cleaner must drop.
		{"9999999999", "Age 40-49", "1", "A81001", "E01000001", time.Time{}, windowStart, time.Time{}},
		{"9450137268", "Age 40-49", "2", "B82002", "E01000003", time.Time{}, windowStart, time.Time{}},
	}
	for _, patient := range patients {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.patient_records (
				nhs_number, age_band, gender, gp_practice, lsoa_code,
				date_of_death, record_start_date, record_end_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, schema),
			patient.nhsNumber,
			patient.ageBand,
			patient.gender,
			patient.practice,
			patient.lsoa,
			nullDate(patient.death),
			patient.start,
			nullDate(patient.end),
		)
		if err != nil {
			return false, err
		}
	}

	type practiceSeed struct {
		code, name, postcode, subICB, icb, region string
	}
	practices := []practiceSeed{
		{"A81001", "The Densham Surgery", "TS18 1HU", "16C", "QF7", "Y63"},
		{"B82002", "Queens Park Medical Centre", "TS18 2AW", "16C", "QF7", "Y63"},
	}
	for _, practice := range practices {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.ods_practices (
				code, name, postcode, commissioner_org_code,
				high_level_health_geography, national_grouping,
				open_date, close_date, record_start_date, record_end_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,$7,NULL)`, schema),
			practice.code,
			practice.name,
			practice.postcode,
			practice.subICB,
			practice.icb,
			practice.region,
			windowStart.AddDate(-10, 0, 0),
		)
		if err != nil {
			return false, err
		}
	}

	type geographySeed struct {
		code, name, onsCode, entity string
	}
	geographies := []geographySeed{
		{"16C", "NHS North East and North Cumbria ICB - 16C", "E38000163", "E38"},
		{"QF7", "NHS North East and North Cumbria Integrated Care Board", "E54000050", "E54"},
		{"Y63", "North East and Yorkshire Commissioning Region", "E40000012", "E40"},
	}
	for _, geography := range geographies {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.geography_names (
				dh_geography_code, dh_geography_name, ons_code, entity_code, is_current
			) VALUES ($1,$2,$3,$4,true)`, schema),
			geography.code,
			geography.name,
			geography.onsCode,
			geography.entity,
		)
		if err != nil {
			return false, err
		}
	}

	type lsoaSeed struct {
		code, name, laCode, laName string
	}
	lsoas := []lsoaSeed{
		{"E01000001", "Stockton-on-Tees 001A", "E06000004", "Stockton-on-Tees"},
		{"E01000002", "Stockton-on-Tees 001B", "E06000004", "Stockton-on-Tees"},
		{"E01000003", "Stockton-on-Tees 002A", "E06000004", "Stockton-on-Tees"},
	}
	for _, lsoa := range lsoas {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.lsoa_mappings (
				lsoa_code, lsoa_name,
				sub_icb_location_code, ons_sub_icb_location_code, sub_icb_location_name,
				la_code, la_name
			) VALUES ($1,$2,'16C','E38000163','NHS North East and North Cumbria ICB - 16C',$3,$4)`, schema),
			lsoa.code,
			lsoa.name,
			lsoa.laCode,
			lsoa.laName,
		)
		if err != nil {
			return false, err
		}
	}

	// A spread of single-year sex/age buckets per practice per month.
	buckets := []struct {
		ageGen string
		count  int
	}{
		{"MALE_24_25", 180},
		{"MALE_45_46", 120},
		{"MALE_72_73", 60},
		{"FEMALE_24_25", 175},
		{"FEMALE_52_53", 130},
		{"FEMALE_95_96", 12},
	}
	for _, month := range months {
		for _, practice := range practices {
			for _, bucket := range buckets {
				_, err = tx.ExecContext(ctx, fmt.Sprintf(`
					INSERT INTO %s.gp_patient_list (
						practice_code, extract_date, age_gen, patient_count
					) VALUES ($1,$2,$3,$4)`, schema),
					practice.code,
					month,
					bucket.ageGen,
					bucket.count,
				)
				if err != nil {
					return false, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
