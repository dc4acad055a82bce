package main

import (
	"sort"
	"time"
)

// Ordered categories for the two demographic dimensions. Sorting and output
// formatting both go through these; no call site re-derives the order.
var (
	genderOrder = []string{
		allCategory,
		allDeceased,
		"Female",
		"Male",
		unknownGender,
	}
	ageBandOrder = []string{
		"0-9",
		"10-19",
		"20-29",
		"30-39",
		"40-49",
		"50-59",
		"60-69",
		"70-79",
		"80-89",
		"90+",
		allCategory,
		unknownAge,
		allDeceased,
	}
)

func categoryRank(order []string, value string) int {
	for rank, category := range order {
		if category == value {
			return rank
		}
	}
	return len(order)
}

func genderRank(value string) int {
	return categoryRank(genderOrder, value)
}

func ageBandRank(value string) int {
	return categoryRank(ageBandOrder, value)
}

// measureSet names one breakdown of the age/gender output: the snapshot date
// plus any of the two demographic dimensions. A dimension left out of the
// grouping is reported under a fill category so every breakdown shares one
// column set.
type measureSet struct {
	byAgeBand bool
	byGender  bool
}

// The four living breakdowns and two deceased breakdowns the publication
// requires, in output concatenation order.
var (
	livingMeasures = []measureSet{
		{byAgeBand: true, byGender: true},
		{byGender: true},
		{byAgeBand: true},
		{},
	}
	deceasedMeasures = []measureSet{
		{byGender: true},
		{},
	}
)

// demographicKey is the full dimension key for age/gender aggregation.
type demographicKey struct {
	achDate time.Time
	ageBand string
	gender  string
}

func (m measureSet) keyFor(achDate time.Time, ageBand, gender, fill string) demographicKey {
	key := demographicKey{achDate: achDate, ageBand: fill, gender: fill}
	if m.byAgeBand {
		key.ageBand = ageBand
	}
	if m.byGender {
		key.gender = gender
	}
	return key
}

// aggregateOptOutsByMeasure counts resolved records per group for one
// breakdown. The input is already one record per patient per month, so a row
// count is a distinct patient count.
func aggregateOptOutsByMeasure(records []MonthlyRecord, measure measureSet, fill string) map[demographicKey]int {
	counts := make(map[demographicKey]int)
	for _, record := range records {
		counts[measure.keyFor(record.AchDate, record.AgeBand, record.Gender, fill)]++
	}
	return counts
}

// aggregateOptOutDemographics runs every requested breakdown and concatenates
// the results in measure order, each breakdown's groups sorted by date then
// category so the concatenation is stable.
func aggregateOptOutDemographics(records []MonthlyRecord, measures []measureSet, fill string) []demographicCount {
	var rows []demographicCount
	for _, measure := range measures {
		counts := aggregateOptOutsByMeasure(records, measure, fill)
		rows = append(rows, sortedDemographicCounts(counts)...)
	}
	return rows
}

type demographicCount struct {
	key   demographicKey
	count int
}

func sortedDemographicCounts(counts map[demographicKey]int) []demographicCount {
	rows := make([]demographicCount, 0, len(counts))
	for key, count := range counts {
		rows = append(rows, demographicCount{key: key, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].key, rows[j].key
		if !a.achDate.Equal(b.achDate) {
			return a.achDate.Before(b.achDate)
		}
		if a.gender != b.gender {
			return genderRank(a.gender) < genderRank(b.gender)
		}
		return ageBandRank(a.ageBand) < ageBandRank(b.ageBand)
	})
	return rows
}

// practiceKey and lsoaKey are the dimension keys for the two geography
// breakdowns.
type practiceKey struct {
	achDate  time.Time
	practice string
}

type lsoaKey struct {
	achDate  time.Time
	lsoaCode string
}

func aggregateOptOutsByPractice(records []MonthlyRecord) map[practiceKey]int {
	counts := make(map[practiceKey]int)
	for _, record := range records {
		counts[practiceKey{achDate: record.AchDate, practice: record.Practice}]++
	}
	return counts
}

func aggregateOptOutsByLSOA(records []MonthlyRecord) map[lsoaKey]int {
	counts := make(map[lsoaKey]int)
	for _, record := range records {
		counts[lsoaKey{achDate: record.AchDate, lsoaCode: record.LSOACode}]++
	}
	return counts
}

func aggregateOptOutsByMonth(records []MonthlyRecord) map[time.Time]int {
	counts := make(map[time.Time]int)
	for _, record := range records {
		counts[record.AchDate]++
	}
	return counts
}

// optOutRate is the published rate: opt-outs per hundred registered patients.
// A zero denominator yields zero, never a division error; renderers that need
// a placeholder for the undefined case check the denominator themselves.
func optOutRate(optOut int, listSize int) float64 {
	if listSize == 0 {
		return 0
	}
	return 100 * float64(optOut) / float64(listSize)
}
