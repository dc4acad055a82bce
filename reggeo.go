package main

import (
	"sort"
	"strconv"
	"time"
)

// RegGeoRow is one row of the registration-geography output: a practice and
// its commissioning hierarchy for one snapshot month, with opt-out count and
// list size.
type RegGeoRow struct {
	AchDate      time.Time
	Practice     string
	Postcode     string
	PracticeName string

	SubICBLocationCode    string
	ONSSubICBLocationCode string
	SubICBLocationName    string

	ONSICBCode string
	ICBCode    string
	ICBName    string

	CommRegionCode    string
	ONSCommRegionCode string
	CommRegionName    string

	OptOut   int
	ListSize int
}

// createRegGeoTable outer-joins opt-out counts to list sizes per date and
// practice. Opt-outs registered to a practice with no active list size that
// month collapse into a single Unallocated row per date, then everything is
// re-summed so the collapsed rows merge.
func createRegGeoTable(living []MonthlyRecord, listSizes []ListSizeEntry, practices []PracticeInfo) []RegGeoRow {
	optOuts := aggregateOptOutsByPractice(living)
	denominators := aggregateListSizeByPractice(listSizes)
	info := practiceLookup(practices)

	merged := make(map[practiceKey]*RegGeoRow, len(denominators))
	for key, listSize := range denominators {
		row := regGeoRowFromPractice(info[key], key)
		row.ListSize = listSize
		merged[key] = row
	}
	for key, count := range optOuts {
		if row, ok := merged[key]; ok {
			row.OptOut += count
			continue
		}
		fallback := practiceKey{achDate: key.achDate, practice: unallocated}
		row, ok := merged[fallback]
		if !ok {
			row = unallocatedRegGeoRow(key.achDate)
			merged[fallback] = row
		}
		row.OptOut += count
	}

	rows := make([]RegGeoRow, 0, len(merged))
	for _, row := range merged {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].AchDate.Equal(rows[j].AchDate) {
			return rows[i].AchDate.After(rows[j].AchDate)
		}
		return rows[i].Practice < rows[j].Practice
	})
	return rows
}

func regGeoRowFromPractice(practice PracticeInfo, key practiceKey) *RegGeoRow {
	return &RegGeoRow{
		AchDate:      key.achDate,
		Practice:     key.practice,
		Postcode:     orUnallocated(practice.Postcode),
		PracticeName: orUnallocated(practice.Name),

		SubICBLocationCode:    orUnallocated(practice.SubICBLocationCode),
		ONSSubICBLocationCode: orUnallocated(practice.ONSSubICBLocationCode),
		SubICBLocationName:    orUnallocated(practice.SubICBLocationName),

		ONSICBCode: orUnallocated(practice.ONSICBCode),
		ICBCode:    orUnallocated(practice.ICBCode),
		ICBName:    orUnallocated(practice.ICBName),

		CommRegionCode:    orUnallocated(practice.CommRegionCode),
		ONSCommRegionCode: orUnallocated(practice.ONSCommRegionCode),
		CommRegionName:    orUnallocated(practice.CommRegionName),
	}
}

func unallocatedRegGeoRow(achDate time.Time) *RegGeoRow {
	return regGeoRowFromPractice(PracticeInfo{}, practiceKey{achDate: achDate, practice: unallocated})
}

func orUnallocated(value string) string {
	if value == "" {
		return unallocated
	}
	return value
}

func regGeoCSVRecords(rows []RegGeoRow) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"ACH_DATE",
		"GP_PRACTICE",
		"POSTCODE",
		"PRACTICE_NAME",
		"SUB_ICB_LOCATION_CODE",
		"ONS_SUB_ICB_LOCATION_CODE",
		"SUB_ICB_LOCATION_NAME",
		"ONS_ICB_CODE",
		"ICB_CODE",
		"ICB_NAME",
		"COMM_REGION_CODE",
		"ONS_COMM_REGION_CODE",
		"COMM_REGION_NAME",
		"OPT_OUT",
		"LIST_SIZE",
	})
	for _, row := range rows {
		records = append(records, []string{
			formatPublicationDate(row.AchDate),
			row.Practice,
			row.Postcode,
			row.PracticeName,
			row.SubICBLocationCode,
			row.ONSSubICBLocationCode,
			row.SubICBLocationName,
			row.ONSICBCode,
			row.ICBCode,
			row.ICBName,
			row.CommRegionCode,
			row.ONSCommRegionCode,
			row.CommRegionName,
			strconv.Itoa(row.OptOut),
			strconv.Itoa(row.ListSize),
		})
	}
	return records
}
