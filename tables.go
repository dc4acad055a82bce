package main

import (
	"sort"
	"strings"
	"time"
)

// The workbook shows suppressed or undefined cells as publication symbols:
// "z" where a value cannot be calculated and "-" where a count is zero.
const (
	symbolNotApplicable = "z"
	symbolZero          = "-"
)

// Table1Row is one month of England-level totals.
type Table1Row struct {
	Date     string
	ONSCode  string
	Code     string
	Name     string
	OptOut   int
	ListSize int
	Rate     float64
	Deceased int
}

// createTable1 builds the England monthly totals: opt-outs, list size, rate
// and deceased count per reporting month, newest first.
func createTable1(living []MonthlyRecord, deceased []MonthlyRecord, listSizes []ListSizeEntry) []Table1Row {
	optOuts := aggregateOptOutsByMonth(living)
	deceasedCounts := aggregateOptOutsByMonth(deceased)
	denominators := aggregateListSizeByMonth(listSizes)

	months := make([]time.Time, 0, len(optOuts))
	for month := range optOuts {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	rows := make([]Table1Row, 0, len(months))
	for _, month := range months {
		rows = append(rows, Table1Row{
			Date:     formatFullDate(month),
			ONSCode:  "E92000001",
			Code:     "Eng",
			Name:     "England",
			OptOut:   optOuts[month],
			ListSize: denominators[month],
			Rate:     optOutRate(optOuts[month], denominators[month]),
			Deceased: deceasedCounts[month],
		})
	}
	return rows
}

// Age-band order for the workbook's age/gender table, after the band labels
// are reshaped for presentation. Labels outside the list (Unknown) sort last.
var table2AgeOrder = []string{
	"0 to 9",
	"10 to 19",
	"20 to 29",
	"30 to 39",
	"40 to 49",
	"50 to 59",
	"60 to 69",
	"70 to 79",
	"80 to 89",
	"90 +",
	allCategory,
	"Deceased",
}

var table2GenderOrder = []string{"Female", "Male", unknownGender}

type table2Row struct {
	Age      string
	Gender   string
	OptOut   int
	ListSize int
	Rate     float64
}

// createTable2 reshapes the age/gender table for the workbook: current month
// only, total rows removed, presentation band labels, deceased rows moved to
// the end, zeros shown as "z".
func createTable2(ageGen []AgeGenRow, dates ReportDates) [][]any {
	currentMonth := dates.CurrentMonth()

	var rows []table2Row
	for _, row := range ageGen {
		if !row.AchDate.Equal(currentMonth) {
			continue
		}
		if row.Gender == allCategory || row.Gender == allDeceased {
			continue
		}
		if row.AgeBand == allCategory && (row.Gender == "Male" || row.Gender == "Female") {
			continue
		}
		rows = append(rows, table2Row{
			Age:      table2AgeLabel(row.AgeBand),
			Gender:   row.Gender,
			OptOut:   row.OptOut,
			ListSize: row.ListSize,
			Rate:     row.OptOutRate,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Gender != rows[j].Gender {
			return categoryRank(table2GenderOrder, rows[i].Gender) < categoryRank(table2GenderOrder, rows[j].Gender)
		}
		return categoryRank(table2AgeOrder, rows[i].Age) < categoryRank(table2AgeOrder, rows[j].Age)
	})

	ordered := make([]table2Row, 0, len(rows))
	var deceasedRows []table2Row
	for _, row := range rows {
		if row.Age == "Deceased" {
			deceasedRows = append(deceasedRows, row)
			continue
		}
		ordered = append(ordered, row)
	}
	ordered = append(ordered, deceasedRows...)

	cells := make([][]any, 0, len(ordered))
	for _, row := range ordered {
		cells = append(cells, []any{
			row.Age,
			row.Gender,
			zeroAsSymbol(row.OptOut),
			zeroAsSymbol(row.ListSize),
			zeroRateAsSymbol(row.Rate),
		})
	}
	return cells
}

func table2AgeLabel(ageBand string) string {
	if ageBand == allDeceased {
		return "Deceased"
	}
	label := strings.ReplaceAll(ageBand, "-", " to ")
	return strings.ReplaceAll(label, "+", " +")
}

func zeroAsSymbol(value int) any {
	if value == 0 {
		return symbolNotApplicable
	}
	return value
}

func zeroRateAsSymbol(rate float64) any {
	if rate == 0 {
		return symbolNotApplicable
	}
	return rate
}

// createTable3 lists the current month per practice in three cohorts:
// practices with opt-outs, practices with none (count shown as "-"), then the
// Unallocated remainder whose rate cannot be calculated.
func createTable3(regGeo []RegGeoRow, dates ReportDates) [][]any {
	currentMonth := dates.CurrentMonth()

	var current []RegGeoRow
	for _, row := range regGeo {
		if row.AchDate.Equal(currentMonth) {
			current = append(current, row)
		}
	}
	sort.Slice(current, func(i, j int) bool { return current[i].Practice < current[j].Practice })

	var standard, zeroOptOut, unallocatedRows [][]any
	for _, row := range current {
		switch {
		case row.PracticeName == unallocated:
			unallocatedRows = append(unallocatedRows, []any{
				row.Practice, row.PracticeName, row.OptOut, row.ListSize, practiceRateCell(row),
			})
		case row.OptOut == 0:
			zeroOptOut = append(zeroOptOut, []any{
				row.Practice, row.PracticeName, symbolZero, row.ListSize, practiceRateCell(row),
			})
		default:
			standard = append(standard, []any{
				row.Practice, row.PracticeName, row.OptOut, row.ListSize, practiceRateCell(row),
			})
		}
	}

	cells := make([][]any, 0, len(current))
	cells = append(cells, standard...)
	cells = append(cells, zeroOptOut...)
	cells = append(cells, unallocatedRows...)
	return cells
}

func practiceRateCell(row RegGeoRow) any {
	if row.ListSize == 0 {
		return symbolNotApplicable
	}
	return optOutRate(row.OptOut, row.ListSize)
}

type table4Group struct {
	ONSCode  string
	Code     string
	Name     string
	OptOut   int
	ListSize int
	Deceased int
}

// createTable4 rolls the current month up to sub-ICB of registration, with a
// deceased column joined in per practice. Practices without a commissioning
// geography group under Unallocated.
func createTable4(regGeo []RegGeoRow, deceased []MonthlyRecord, dates ReportDates) [][]any {
	currentMonth := dates.CurrentMonth()

	deceasedByPractice := make(map[string]int)
	for _, record := range deceased {
		if record.AchDate.Equal(currentMonth) {
			deceasedByPractice[record.Practice]++
		}
	}

	groups := make(map[string]*table4Group)
	add := func(onsCode, code, name string, optOut, listSize, deceasedCount int) {
		group, ok := groups[code]
		if !ok {
			group = &table4Group{ONSCode: onsCode, Code: code, Name: name}
			groups[code] = group
		}
		group.OptOut += optOut
		group.ListSize += listSize
		group.Deceased += deceasedCount
	}

	seenPractices := make(map[string]struct{})
	for _, row := range regGeo {
		if !row.AchDate.Equal(currentMonth) {
			continue
		}
		seenPractices[row.Practice] = struct{}{}
		add(row.ONSSubICBLocationCode, row.SubICBLocationCode, row.SubICBLocationName,
			row.OptOut, row.ListSize, deceasedByPractice[row.Practice])
	}
	for practice, count := range deceasedByPractice {
		if _, ok := seenPractices[practice]; ok {
			continue
		}
		add(unallocated, unallocated, unallocated, 0, 0, count)
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	cells := make([][]any, 0, len(codes))
	for _, code := range codes {
		group := groups[code]
		var rate any = symbolNotApplicable
		if group.ListSize > 0 {
			rate = optOutRate(group.OptOut, group.ListSize)
		}
		cells = append(cells, []any{
			group.ONSCode, group.Code, group.Name,
			group.OptOut, group.ListSize, rate, group.Deceased,
		})
	}
	return cells
}
