package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const defaultReportingMonths = 11

func main() {
	endDate := flag.String("end-date", "", "Reporting period end date (YYYY-MM-DD)")
	pubDate := flag.String("pub-date", "", "Publication date (YYYY-MM-DD)")
	months := flag.Int("months", defaultReportingMonths, "Reporting period length in months")
	outputDir := flag.String("out", "outputs", "Directory for output files")
	dbSchema := flag.String("db-schema", "ndop", "Postgres schema holding the source tables")
	dbTag := flag.String("db-tag", "", "Optional label recorded against this run")
	initDB := flag.Bool("init-db", false, "Initialize database schema and seed sample data if empty")
	skipExcel := flag.Bool("skip-excel", false, "Write the delimited outputs only")
	flag.Parse()

	if *endDate == "" {
		exitWithError(errors.New("--end-date is required"))
	}
	if *pubDate == "" {
		exitWithError(errors.New("--pub-date is required"))
	}

	dates, err := newReportDates(*endDate, *pubDate, *months)
	if err != nil {
		exitWithError(err)
	}

	dbURL := dbURLFromEnv()
	if dbURL == "" {
		exitWithError(errors.New("database URL missing; set NDOP_PUBLICATION_DB_URL or DATABASE_URL"))
	}
	schema, err := sanitizeSchema(*dbSchema)
	if err != nil {
		exitWithError(err)
	}
	cfg := Config{
		DBURL:     dbURL,
		Schema:    schema,
		Tag:       *dbTag,
		OutputDir: *outputDir,
		SkipExcel: *skipExcel,
	}

	ctx := context.Background()
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		exitWithError(err)
	}
	defer db.Close()

	if *initDB {
		if err := ensureSchema(ctx, db, cfg.Schema); err != nil {
			exitWithError(err)
		}
		seeded, err := seedDatabase(ctx, db, cfg.Schema, dates)
		if err != nil {
			exitWithError(err)
		}
		if seeded {
			fmt.Println("Seeded database with sample publication data.")
		} else {
			fmt.Println("Source data already present; skipping seed.")
		}
	}

	if err := runPublication(ctx, db, cfg, dates); err != nil {
		exitWithError(err)
	}
}

// runPublication executes one full reporting run: extract, resolve each
// snapshot month, aggregate every breakdown, and write the three delimited
// outputs plus the summary workbook.
func runPublication(ctx context.Context, db *sql.DB, cfg Config, dates ReportDates) error {
	months := dates.ReportingMonths()
	if len(months) == 0 {
		return fmt.Errorf("reporting window %s - %s contains no months",
			dates.StartDate.Format("2006-01-02"), dates.EndDate.Format("2006-01-02"))
	}
	fmt.Printf("Reporting window: %s - %s (%d months)\n",
		dates.StartMonthYearLabel(), dates.EndMonthYearLabel(), len(months))

	records, err := fetchPatientRecords(ctx, db, cfg.Schema, dates)
	if err != nil {
		return err
	}
	records = cleanPatientRecords(records)
	fmt.Printf("Patient records fetched: %d after cleaning\n", len(records))

	listSizeCounts, err := fetchListSizeCounts(ctx, db, cfg.Schema, dates)
	if err != nil {
		return err
	}
	practices, err := fetchActivePracticesByMonth(ctx, db, cfg.Schema, months)
	if err != nil {
		return err
	}
	listSizes := filterToActivePractices(mapListSizeAges(listSizeCounts), practices)
	fmt.Printf("List size entries: %d across %d active practice months\n", len(listSizes), len(practices))

	lsoaMappings, err := fetchLSOAMappings(ctx, db, cfg.Schema)
	if err != nil {
		return err
	}

	living := concatenateMonthlyRecords(resolveLivingRecords, records, months)
	deceased := concatenateMonthlyRecords(resolveDeceasedRecords, records, months)
	fmt.Printf("Resolved records: %d living, %d deceased\n", len(living), len(deceased))

	ageGen := createAgeGenTable(living, deceased, listSizes)
	regGeo := createRegGeoTable(living, listSizes, practices)
	resGeo := createResGeoTable(living, lsoaMappings)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	suffix := dates.MonthYear()

	ageGenPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("NDOP_age_gen_%s.csv", suffix))
	if err := writeCSVFile(ageGenPath, ageGenCSVRecords(ageGen)); err != nil {
		return err
	}
	regGeoPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("NDOP_reg_geog_%s.csv", suffix))
	if err := writeCSVFile(regGeoPath, regGeoCSVRecords(regGeo)); err != nil {
		return err
	}
	resGeoPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("NDOP_res_geog_%s.csv", suffix))
	if err := writeCSVFile(resGeoPath, resGeoCSVRecords(resGeo)); err != nil {
		return err
	}
	fmt.Printf("Delimited outputs written to %s\n", cfg.OutputDir)

	if !cfg.SkipExcel {
		tables := buildWorkbookTables(dates,
			createTable1(living, deceased, listSizes),
			createTable2(ageGen, dates),
			createTable3(regGeo, dates),
			createTable4(regGeo, deceased, dates),
		)
		workbookPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("NDOP_sum_%s.xlsx", suffix))
		if err := writeWorkbook(workbookPath, dates, tables); err != nil {
			return err
		}
		fmt.Printf("Workbook written to %s\n", workbookPath)
	}

	runID, err := recordPublicationRun(ctx, db, cfg.Schema, cfg, dates, len(ageGen), len(regGeo), len(resGeo))
	if err != nil {
		return err
	}
	fmt.Printf("Publication run recorded (run_id=%s)\n", runID)
	return nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
