package main

import (
	"sort"
	"strconv"
	"time"
)

// AgeGenRow is one row of the age/gender output: a full dimension key joined
// to its opt-out count, denominator and rate.
type AgeGenRow struct {
	AchDate    time.Time
	AgeBand    string
	Gender     string
	OptOut     int
	ListSize   int
	OptOutRate float64
}

// createAgeGenTable builds the age/gender breakdown table: every living and
// deceased breakdown, joined to its matching denominator, rated, suppressed
// and sorted into publication order.
func createAgeGenTable(living []MonthlyRecord, deceased []MonthlyRecord, listSizes []ListSizeEntry) []AgeGenRow {
	counts := aggregateOptOutDemographics(living, livingMeasures, allCategory)
	counts = append(counts, aggregateOptOutDemographics(deceased, deceasedMeasures, allDeceased)...)

	denominators := listSizeForAgeGen(listSizes)

	rows := make([]AgeGenRow, 0, len(counts))
	for _, count := range counts {
		listSize := denominators[count.key]
		rows = append(rows, AgeGenRow{
			AchDate:    count.key.achDate,
			AgeBand:    count.key.ageBand,
			Gender:     count.key.gender,
			OptOut:     count.count,
			ListSize:   listSize,
			OptOutRate: optOutRate(count.count, listSize),
		})
	}

	rows = suppressUnknownGenderRows(rows)
	sortAgeGenRows(rows)
	return rows
}

// suppressUnknownGenderRows removes undisclosed-gender rows broken down by a
// known age band. The publication reports the unknown-gender totals but never
// its age-disaggregated cells.
func suppressUnknownGenderRows(rows []AgeGenRow) []AgeGenRow {
	kept := make([]AgeGenRow, 0, len(rows))
	for _, row := range rows {
		if row.Gender == unknownGender && row.AgeBand != allCategory && row.AgeBand != allDeceased {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// Publication order: newest month first, then gender and age band in category
// order.
func sortAgeGenRows(rows []AgeGenRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].AchDate.Equal(rows[j].AchDate) {
			return rows[i].AchDate.After(rows[j].AchDate)
		}
		if rows[i].Gender != rows[j].Gender {
			return genderRank(rows[i].Gender) < genderRank(rows[j].Gender)
		}
		return ageBandRank(rows[i].AgeBand) < ageBandRank(rows[j].AgeBand)
	})
}

func ageGenCSVRecords(rows []AgeGenRow) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"ACH_DATE", "AGE_BAND", "GENDER", "OPT_OUT", "LIST_SIZE", "OPT_OUT_RATE"})
	for _, row := range rows {
		records = append(records, []string{
			formatPublicationDate(row.AchDate),
			row.AgeBand,
			row.Gender,
			strconv.Itoa(row.OptOut),
			strconv.Itoa(row.ListSize),
			formatRate(row.OptOutRate),
		})
	}
	return records
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
