package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Config carries everything a run needs. It is built once in main and passed
// down; nothing in the pipeline reads process-wide state.
type Config struct {
	DBURL     string
	Schema    string
	Tag       string
	OutputDir string
	SkipExcel bool
}

func dbURLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("NDOP_PUBLICATION_DB_URL")); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

var validSchemaName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func sanitizeSchema(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("db schema is required")
	}
	if !validSchemaName.MatchString(value) {
		return "", fmt.Errorf("invalid schema name: %s", value)
	}
	return value, nil
}

func openDatabase(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBURL)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// scanDate parses a date column delivered as text. NULL and empty mean "no
// date"; anything unparsable is a DataFormatError and aborts the run.
func scanDate(field string, value sql.NullString) (time.Time, error) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return time.Time{}, nil
	}
	parsed, err := parseDate(value.String)
	if err != nil {
		return time.Time{}, &DataFormatError{Field: field, Value: value.String, Err: err}
	}
	return dateOnly(parsed), nil
}

func stringOrEmpty(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

// fetchPatientRecords pulls every record version whose validity interval
// overlaps the reporting window. Dates travel as text so the parse step can
// classify malformed values instead of silently zeroing them.
func fetchPatientRecords(ctx context.Context, db *sql.DB, schema string, dates ReportDates) ([]PatientRecord, error) {
	query := fmt.Sprintf(`
		SELECT nhs_number,
			age_band,
			gender,
			gp_practice,
			lsoa_code,
			date_of_death::text,
			record_start_date::text,
			record_end_date::text
		FROM %s.patient_records
		WHERE record_start_date <= $1
		AND (record_end_date >= $2 OR record_end_date IS NULL)
		ORDER BY nhs_number, record_start_date`, schema)

	rows, err := db.QueryContext(ctx, query, dates.EndDate, dates.StartDate)
	if err != nil {
		return nil, fmt.Errorf("unable to query patient records: %w", err)
	}
	defer rows.Close()

	var records []PatientRecord
	for rows.Next() {
		var nhsNumber, ageBand, gender, practice, lsoa sql.NullString
		var death, start, end sql.NullString
		if err := rows.Scan(&nhsNumber, &ageBand, &gender, &practice, &lsoa, &death, &start, &end); err != nil {
			return nil, fmt.Errorf("unable to scan patient record: %w", err)
		}
		record := PatientRecord{
			NHSNumber: stringOrEmpty(nhsNumber),
			AgeBand:   stringOrEmpty(ageBand),
			Gender:    stringOrEmpty(gender),
			Practice:  stringOrEmpty(practice),
			LSOACode:  stringOrEmpty(lsoa),
		}
		if record.DateOfDeath, err = scanDate("date_of_death", death); err != nil {
			return nil, err
		}
		if record.RecordStart, err = scanDate("record_start_date", start); err != nil {
			return nil, err
		}
		if record.RecordStart.IsZero() {
			return nil, &DataFormatError{Field: "record_start_date", Value: "", Err: errors.New("missing record start date")}
		}
		if record.RecordEnd, err = scanDate("record_end_date", end); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// fetchListSizeCounts pulls the registered-population extract for every month
// of the window, one row per practice, extract date and sex/age bucket.
func fetchListSizeCounts(ctx context.Context, db *sql.DB, schema string, dates ReportDates) ([]ListSizeCount, error) {
	query := fmt.Sprintf(`
		SELECT practice_code, extract_date::text, age_gen, patient_count
		FROM %s.gp_patient_list
		WHERE extract_date BETWEEN $1 AND $2
		ORDER BY extract_date, practice_code, age_gen`, schema)

	rows, err := db.QueryContext(ctx, query, dates.StartDate, dates.EndDate)
	if err != nil {
		return nil, fmt.Errorf("unable to query list size: %w", err)
	}
	defer rows.Close()

	var counts []ListSizeCount
	for rows.Next() {
		var practice, ageGen sql.NullString
		var extractDate sql.NullString
		var count int
		if err := rows.Scan(&practice, &extractDate, &ageGen, &count); err != nil {
			return nil, fmt.Errorf("unable to scan list size row: %w", err)
		}
		entry := ListSizeCount{
			Practice: strings.TrimSpace(stringOrEmpty(practice)),
			AgeGen:   stringOrEmpty(ageGen),
			Count:    count,
		}
		if entry.AchDate, err = scanDate("extract_date", extractDate); err != nil {
			return nil, err
		}
		counts = append(counts, entry)
	}
	return counts, rows.Err()
}

// fetchActivePractices returns the practices open and valid on one snapshot
// date that produced a list-size extract that month.
func fetchActivePractices(ctx context.Context, db *sql.DB, schema string, date time.Time) ([]PracticeInfo, error) {
	query := fmt.Sprintf(`
		SELECT a.code, a.name, a.postcode,
			a.commissioner_org_code,
			a.high_level_health_geography,
			a.national_grouping
		FROM %s.ods_practices AS a
		WHERE a.open_date <= $1
		AND (a.close_date IS NULL OR a.close_date >= $1)
		AND a.record_start_date <= $1
		AND (a.record_end_date IS NULL OR a.record_end_date >= $1)
		AND a.code IN (SELECT DISTINCT practice_code FROM %s.gp_patient_list WHERE extract_date = $1)
		ORDER BY a.code`, schema, schema)

	rows, err := db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("unable to query active practices: %w", err)
	}
	defer rows.Close()

	var practices []PracticeInfo
	for rows.Next() {
		var code, name, postcode, subICB, icb, region sql.NullString
		if err := rows.Scan(&code, &name, &postcode, &subICB, &icb, &region); err != nil {
			return nil, fmt.Errorf("unable to scan practice: %w", err)
		}
		practices = append(practices, PracticeInfo{
			Practice:           strings.TrimSpace(stringOrEmpty(code)),
			Name:               stringOrEmpty(name),
			Postcode:           stringOrEmpty(postcode),
			AchDate:            date,
			SubICBLocationCode: stringOrEmpty(subICB),
			ICBCode:            stringOrEmpty(icb),
			CommRegionCode:     stringOrEmpty(region),
		})
	}
	return practices, rows.Err()
}

// fetchActivePracticesByMonth concatenates the active-practice reference over
// every snapshot date, geography names joined in.
func fetchActivePracticesByMonth(ctx context.Context, db *sql.DB, schema string, months []time.Time) ([]PracticeInfo, error) {
	geographies, err := fetchGeographyNames(ctx, db, schema)
	if err != nil {
		return nil, err
	}
	var practices []PracticeInfo
	for _, month := range months {
		monthly, err := fetchActivePractices(ctx, db, schema, month)
		if err != nil {
			return nil, err
		}
		practices = append(practices, mapPracticeGeographies(monthly, geographies)...)
	}
	return practices, nil
}

func fetchGeographyNames(ctx context.Context, db *sql.DB, schema string) ([]GeographyName, error) {
	query := fmt.Sprintf(`
		SELECT dh_geography_code, dh_geography_name, ons_code
		FROM %s.geography_names
		WHERE entity_code IN ('E38', 'E54', 'E40')
		AND is_current`, schema)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to query geography names: %w", err)
	}
	defer rows.Close()

	var names []GeographyName
	for rows.Next() {
		var code, name, onsCode sql.NullString
		if err := rows.Scan(&code, &name, &onsCode); err != nil {
			return nil, fmt.Errorf("unable to scan geography name: %w", err)
		}
		names = append(names, GeographyName{
			DHGeographyCode: stringOrEmpty(code),
			DHGeographyName: stringOrEmpty(name),
			ONSCode:         stringOrEmpty(onsCode),
		})
	}
	return names, rows.Err()
}

func fetchLSOAMappings(ctx context.Context, db *sql.DB, schema string) ([]LSOAInfo, error) {
	query := fmt.Sprintf(`
		SELECT lsoa_code, lsoa_name,
			sub_icb_location_code, ons_sub_icb_location_code, sub_icb_location_name,
			la_code, la_name
		FROM %s.lsoa_mappings
		ORDER BY lsoa_code`, schema)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to query LSOA mappings: %w", err)
	}
	defer rows.Close()

	var mappings []LSOAInfo
	for rows.Next() {
		var lsoaCode, lsoaName, subICB, onsSubICB, subICBName, laCode, laName sql.NullString
		if err := rows.Scan(&lsoaCode, &lsoaName, &subICB, &onsSubICB, &subICBName, &laCode, &laName); err != nil {
			return nil, fmt.Errorf("unable to scan LSOA mapping: %w", err)
		}
		mappings = append(mappings, LSOAInfo{
			LSOACode:              stringOrEmpty(lsoaCode),
			LSOAName:              stringOrEmpty(lsoaName),
			SubICBLocationCode:    stringOrEmpty(subICB),
			ONSSubICBLocationCode: stringOrEmpty(onsSubICB),
			SubICBLocationName:    stringOrEmpty(subICBName),
			LACode:                stringOrEmpty(laCode),
			LAName:                stringOrEmpty(laName),
		})
	}
	return mappings, rows.Err()
}

func ensureSchema(ctx context.Context, db *sql.DB, schema string) error {
	statements := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.patient_records (
				nhs_number text NOT NULL,
				age_band text,
				gender text,
				gp_practice text,
				lsoa_code text,
				date_of_death date,
				record_start_date date NOT NULL,
				record_end_date date
			)`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.gp_patient_list (
				practice_code text NOT NULL,
				extract_date date NOT NULL,
				age_gen text NOT NULL,
				patient_count integer NOT NULL
			)`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.ods_practices (
				code text NOT NULL,
				name text,
				postcode text,
				commissioner_org_code text,
				high_level_health_geography text,
				national_grouping text,
				open_date date,
				close_date date,
				record_start_date date,
				record_end_date date
			)`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.geography_names (
				dh_geography_code text NOT NULL,
				dh_geography_name text,
				ons_code text,
				entity_code text,
				is_current boolean NOT NULL DEFAULT true
			)`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.lsoa_mappings (
				lsoa_code text PRIMARY KEY,
				lsoa_name text,
				sub_icb_location_code text,
				ons_sub_icb_location_code text,
				sub_icb_location_name text,
				la_code text,
				la_name text
			)`, schema),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.publication_runs (
				id uuid PRIMARY KEY,
				start_date date NOT NULL,
				end_date date NOT NULL,
				months integer NOT NULL,
				age_gen_rows integer NOT NULL,
				reg_geog_rows integer NOT NULL,
				res_geog_rows integer NOT NULL,
				run_tag text,
				created_at timestamptz NOT NULL DEFAULT now()
			)`, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_patient_records_span_idx ON %s.patient_records (record_start_date, record_end_date)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_gp_patient_list_date_idx ON %s.gp_patient_list (extract_date)`, schema, schema),
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// recordPublicationRun logs one completed run with its window and output row
// counts, so re-runs of the same period are visible after the fact.
func recordPublicationRun(ctx context.Context, db *sql.DB, schema string, cfg Config, dates ReportDates, ageGenRows, regGeoRows, resGeoRows int) (string, error) {
	runID := uuid.New()
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s.publication_runs (
			id, start_date, end_date, months,
			age_gen_rows, reg_geog_rows, res_geog_rows, run_tag
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, schema),
		runID,
		dates.StartDate,
		dates.EndDate,
		dates.Months,
		ageGenRows,
		regGeoRows,
		resGeoRows,
		nullString(cfg.Tag),
	)
	if err != nil {
		return "", err
	}
	return runID.String(), nil
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullDate(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dateOnly(value), Valid: true}
}
