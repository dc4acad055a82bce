package main

import (
	"sort"
	"strconv"
	"time"
)

// ResGeoRow is one row of the residence-geography output: opt-out counts per
// small-area code with its administrative geography names.
type ResGeoRow struct {
	AchDate  time.Time
	LSOACode string
	LSOAName string

	SubICBLocationCode    string
	ONSSubICBLocationCode string
	SubICBLocationName    string

	LACode string
	LAName string

	OptOut int
}

// createResGeoTable counts opt-outs per date and residence LSOA and joins the
// LSOA reference. Codes missing from the reference collapse into a single
// Unallocated row per date.
func createResGeoTable(living []MonthlyRecord, mappings []LSOAInfo) []ResGeoRow {
	optOuts := aggregateOptOutsByLSOA(living)
	reference := lsoaLookup(mappings)

	merged := make(map[lsoaKey]*ResGeoRow, len(optOuts))
	for key, count := range optOuts {
		mapping, known := reference[key.lsoaCode]
		if !known {
			key = lsoaKey{achDate: key.achDate, lsoaCode: unallocated}
		}
		row, ok := merged[key]
		if !ok {
			row = &ResGeoRow{
				AchDate:  key.achDate,
				LSOACode: key.lsoaCode,
				LSOAName: orUnallocated(mapping.LSOAName),

				SubICBLocationCode:    orUnallocated(mapping.SubICBLocationCode),
				ONSSubICBLocationCode: orUnallocated(mapping.ONSSubICBLocationCode),
				SubICBLocationName:    orUnallocated(mapping.SubICBLocationName),

				LACode: orUnallocated(mapping.LACode),
				LAName: orUnallocated(mapping.LAName),
			}
			merged[key] = row
		}
		row.OptOut += count
	}

	rows := make([]ResGeoRow, 0, len(merged))
	for _, row := range merged {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].AchDate.Equal(rows[j].AchDate) {
			return rows[i].AchDate.After(rows[j].AchDate)
		}
		return rows[i].LSOACode < rows[j].LSOACode
	})
	return rows
}

func resGeoCSVRecords(rows []ResGeoRow) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"ACH_DATE",
		"LSOA_CODE",
		"LSOA_NAME",
		"SUB_ICB_LOCATION_CODE",
		"ONS_SUB_ICB_LOCATION_CODE",
		"SUB_ICB_LOCATION_NAME",
		"LA_CODE",
		"LA_NAME",
		"OPT_OUT",
	})
	for _, row := range rows {
		records = append(records, []string{
			formatPublicationDate(row.AchDate),
			row.LSOACode,
			row.LSOAName,
			row.SubICBLocationCode,
			row.ONSSubICBLocationCode,
			row.SubICBLocationName,
			row.LACode,
			row.LAName,
			strconv.Itoa(row.OptOut),
		})
	}
	return records
}
