package main

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleReportDates(t *testing.T) ReportDates {
	t.Helper()
	dates, err := newReportDates("2022-06-01", "2022-07-07", 2)
	if err != nil {
		t.Fatalf("newReportDates: %v", err)
	}
	return dates
}

func TestBuildWorkbookTables(t *testing.T) {
	dates := sampleReportDates(t)
	table1 := []Table1Row{{
		Date: "01 June 2022", ONSCode: "E92000001", Code: "Eng", Name: "England",
		OptOut: 10, ListSize: 100, Rate: 10, Deceased: 1,
	}}

	tables := buildWorkbookTables(dates, table1, nil, nil, nil)
	if len(tables) != 4 {
		t.Fatalf("expected 4 sheets, got %d", len(tables))
	}
	if tables[0].sheet != "Table 1" || len(tables[0].rows) != 1 {
		t.Fatalf("unexpected first sheet: %+v", tables[0])
	}
	if tables[1].header != "Table 2: Number of national data opt-outs, by Age and Gender, June 2022" {
		t.Fatalf("unexpected table 2 header: %s", tables[1].header)
	}
	if tables[0].header != "Table 1: Number of national data opt-outs, England, April 2022 - June 2022" {
		t.Fatalf("unexpected table 1 header: %s", tables[0].header)
	}
}

func TestWriteWorkbook(t *testing.T) {
	dates := sampleReportDates(t)
	path := filepath.Join(t.TempDir(), "NDOP_sum_Jun_2022.xlsx")
	table1 := []Table1Row{{
		Date: "01 June 2022", ONSCode: "E92000001", Code: "Eng", Name: "England",
		OptOut: 10, ListSize: 100, Rate: 10, Deceased: 1,
	}}
	table2 := [][]any{{"40 to 49", "Female", 5, 50, 10.0}}
	tables := buildWorkbookTables(dates, table1, table2, nil, nil)

	if err := writeWorkbook(path, dates, tables); err != nil {
		t.Fatalf("writeWorkbook: %v", err)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	want := []string{"Title sheet", "Table 1", "Table 2", "Table 3", "Table 4"}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i, sheet := range want {
		if sheets[i] != sheet {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	title, err := book.GetCellValue("Title sheet", "A1")
	if err != nil || title != publicationTitle {
		t.Fatalf("title cell = %q, err %v", title, err)
	}
	published, err := book.GetCellValue("Title sheet", "A8")
	if err != nil || published != "Date Published: 7th July 2022" {
		t.Fatalf("publication date cell = %q, err %v", published, err)
	}
	age, err := book.GetCellValue("Table 2", "A12")
	if err != nil || age != "40 to 49" {
		t.Fatalf("first data cell = %q, err %v", age, err)
	}
}

func TestWriteWorkbookUnwritableDestination(t *testing.T) {
	dates := sampleReportDates(t)
	path := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	err := writeWorkbook(path, dates, buildWorkbookTables(dates, nil, nil, nil, nil))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, ok := err.(*OutputWriteError); !ok {
		t.Fatalf("expected *OutputWriteError, got %T", err)
	}
}
