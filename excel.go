package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const publicationTitle = "National Data Opt-out"

const sourceText = "Source: NHS SPINE, NHS Digital\nOpen Exeter, NHAIS"

const copyrightText = "Copyright © Health and Social Care Information Centre. The Health and Social " +
	"Care Information Centre is a non-departmental body created by statute, also known as NHS Digital."

const revisionNote = "The above data is correct at the time of publication, but these figures may " +
	"change in subsequent publications."

const unallocatedNote = "The Unallocated category above consists of individuals who either had no GP " +
	"practice associated with their NHS number, or the GP practice associated with their NHS number " +
	"is no longer open and active."

const unknownGenderNote = "The unknown category above includes those records which have been closed " +
	"and gender is not included, or those who have chosen to 'prefer not to say' when asked their gender."

type workbookTable struct {
	sheet   string
	header  string
	columns []string
	rows    [][]any
	notes   []string
}

// writeWorkbook renders the four presentation tables into one workbook. The
// file is written to a temporary name and renamed into place so a failed run
// never leaves a partial workbook behind.
func writeWorkbook(path string, dates ReportDates, tables []workbookTable) error {
	book := excelize.NewFile()
	defer book.Close()

	styles, err := newWorkbookStyles(book)
	if err != nil {
		return err
	}

	if err := writeTitleSheet(book, styles, dates); err != nil {
		return err
	}
	for _, table := range tables {
		if err := writeTableSheet(book, styles, table); err != nil {
			return err
		}
	}
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	temp, err := os.CreateTemp(filepath.Dir(path), ".ndop-sum-*.xlsx")
	if err != nil {
		return &OutputWriteError{Path: path, Err: err}
	}
	tempPath := temp.Name()
	if err := temp.Close(); err != nil {
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := book.SaveAs(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return &OutputWriteError{Path: path, Err: err}
	}
	return nil
}

type workbookStyles struct {
	title     int
	header    int
	columns   int
	source    int
	notes     int
	note      int
	copyright int
}

func newWorkbookStyles(book *excelize.File) (workbookStyles, error) {
	var styles workbookStyles
	var err error

	styles.title, err = book.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Arial", Size: 14, Bold: true}})
	if err != nil {
		return styles, err
	}
	styles.header, err = book.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Arial", Size: 12, Bold: true}})
	if err != nil {
		return styles, err
	}
	styles.columns, err = book.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Arial", Size: 10, Bold: true}})
	if err != nil {
		return styles, err
	}
	styles.source, err = book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 9, Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return styles, err
	}
	styles.notes, err = book.NewStyle(&excelize.Style{Font: &excelize.Font{Family: "Arial", Size: 11, Bold: true}})
	if err != nil {
		return styles, err
	}
	styles.note, err = book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return styles, err
	}
	styles.copyright, err = book.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 9},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	return styles, err
}

func writeTitleSheet(book *excelize.File, styles workbookStyles, dates ReportDates) error {
	const sheet = "Title sheet"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}
	if err := book.SetCellValue(sheet, "A1", publicationTitle); err != nil {
		return err
	}
	if err := book.SetCellStyle(sheet, "A1", "A1", styles.title); err != nil {
		return err
	}
	if err := book.SetCellValue(sheet, "A3", fmt.Sprintf("Monthly summary, %s", dates.EndMonthYearLabel())); err != nil {
		return err
	}
	if err := book.SetCellValue(sheet, "A8", fmt.Sprintf("Date Published: %s", dates.FormatPublishingDate())); err != nil {
		return err
	}
	return book.SetColWidth(sheet, "A", "A", 60)
}

func writeTableSheet(book *excelize.File, styles workbookStyles, table workbookTable) error {
	if _, err := book.NewSheet(table.sheet); err != nil {
		return err
	}
	if err := book.SetCellValue(table.sheet, "A1", publicationTitle); err != nil {
		return err
	}
	if err := book.SetCellStyle(table.sheet, "A1", "A1", styles.title); err != nil {
		return err
	}
	if err := book.SetCellValue(table.sheet, "A9", table.header); err != nil {
		return err
	}
	if err := book.SetCellStyle(table.sheet, "A9", "A9", styles.header); err != nil {
		return err
	}

	columnRow := 11
	if err := book.SetSheetRow(table.sheet, fmt.Sprintf("A%d", columnRow), &table.columns); err != nil {
		return err
	}
	lastColumn, err := excelize.ColumnNumberToName(len(table.columns))
	if err != nil {
		return err
	}
	if err := book.SetCellStyle(table.sheet,
		fmt.Sprintf("A%d", columnRow), fmt.Sprintf("%s%d", lastColumn, columnRow), styles.columns); err != nil {
		return err
	}

	row := columnRow + 1
	for _, cells := range table.rows {
		if err := book.SetSheetRow(table.sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		row++
	}

	// Footer block: source, notes and copyright beneath the data.
	row++
	if err := writeFooterCell(book, table.sheet, row, sourceText, styles.source, 24); err != nil {
		return err
	}
	row += 2
	if len(table.notes) > 0 {
		if err := writeFooterCell(book, table.sheet, row, "Notes", styles.notes, 15); err != nil {
			return err
		}
		row++
		for i, note := range table.notes {
			text := fmt.Sprintf("%d. %s", i+1, note)
			if err := writeFooterCell(book, table.sheet, row, text, styles.note, 28); err != nil {
				return err
			}
			row++
		}
	}
	row++
	if err := writeFooterCell(book, table.sheet, row, copyrightText, styles.copyright, 24); err != nil {
		return err
	}

	return book.SetColWidth(table.sheet, "A", lastColumn, 18)
}

func writeFooterCell(book *excelize.File, sheet string, row int, value string, style int, height float64) error {
	cell := fmt.Sprintf("A%d", row)
	if err := book.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	if err := book.SetCellStyle(sheet, cell, cell, style); err != nil {
		return err
	}
	return book.SetRowHeight(sheet, row, height)
}

// buildWorkbookTables assembles the four sheets with their period-specific
// headers and notes.
func buildWorkbookTables(dates ReportDates, table1 []Table1Row, table2 [][]any, table3 [][]any, table4 [][]any) []workbookTable {
	table1Cells := make([][]any, 0, len(table1))
	for _, row := range table1 {
		table1Cells = append(table1Cells, []any{
			row.Date, row.ONSCode, row.Code, row.Name,
			row.OptOut, row.ListSize, row.Rate, row.Deceased,
		})
	}

	return []workbookTable{
		{
			sheet: "Table 1",
			header: fmt.Sprintf("Table 1: Number of national data opt-outs, England, %s - %s",
				dates.StartMonthYearLabel(), dates.EndMonthYearLabel()),
			columns: []string{"Date", "ONS code", "Code", "Name", "Opt-out", "List size", "Opt-out Rate", "Deceased"},
			rows:    table1Cells,
			notes:   []string{revisionNote},
		},
		{
			sheet: "Table 2",
			header: fmt.Sprintf("Table 2: Number of national data opt-outs, by Age and Gender, %s",
				dates.EndMonthYearLabel()),
			columns: []string{"Age", "Gender", "Opt-out", "List size", "Opt-out Rate"},
			rows:    table2,
			notes:   []string{unknownGenderNote},
		},
		{
			sheet: "Table 3",
			header: fmt.Sprintf("Table 3: Number of national data opt-outs, GP Practice, %s",
				dates.EndMonthYearLabel()),
			columns: []string{"Practice code", "Practice name", "Opt-out", "List size", "Opt-out Rate"},
			rows:    table3,
			notes:   []string{revisionNote, unallocatedNote},
		},
		{
			sheet: "Table 4",
			header: fmt.Sprintf("Table 4: Number of national data opt-outs, Sub-ICB of Registration, %s",
				dates.EndMonthYearLabel()),
			columns: []string{"ONS code", "Code", "Name", "Opt-out", "List size", "Opt-out Rate", "Deceased"},
			rows:    table4,
			notes:   []string{unallocatedNote},
		},
	}
}
