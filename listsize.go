package main

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ListSizeCount is one melted registered-population bucket: a practice, an
// extract date and a single-year sex/age column from the wide source extract.
type ListSizeCount struct {
	Practice string
	AchDate  time.Time
	AgeGen   string
	Count    int
}

// ListSizeEntry is a denominator row after the age index mapping: the
// single-year bucket resolved to a publication gender and ten-year age band.
type ListSizeEntry struct {
	Practice string
	AchDate  time.Time
	AgeBand  string
	Gender   string
	ListSize int
}

// The wide extract names its buckets MALE_n_m / FEMALE_n_m for single years of
// age 0..119. Columns that do not match carry practice metadata, not counts.
var ageGenPattern = regexp.MustCompile(`^(FE)?MALE_(\d{1,3})_(\d{1,3})$`)

// ageGenBucket resolves a sex/age column name to its publication gender and
// ten-year age band. Ages 90 and over collapse into the 90+ band.
func ageGenBucket(column string) (gender string, ageBand string, ok bool) {
	match := ageGenPattern.FindStringSubmatch(column)
	if match == nil {
		return "", "", false
	}
	gender = "Male"
	if match[1] == "FE" {
		gender = "Female"
	}
	age, err := strconv.Atoi(match[2])
	if err != nil {
		return "", "", false
	}
	return gender, ageToTenYearBand(age), true
}

func ageToTenYearBand(age int) string {
	if age >= 90 {
		return "90+"
	}
	low := (age / 10) * 10
	return fmt.Sprintf("%d-%d", low, low+9)
}

// mapListSizeAges applies the age index to the melted extract, dropping any
// column that is not a sex/age bucket.
func mapListSizeAges(counts []ListSizeCount) []ListSizeEntry {
	entries := make([]ListSizeEntry, 0, len(counts))
	for _, count := range counts {
		gender, ageBand, ok := ageGenBucket(count.AgeGen)
		if !ok {
			continue
		}
		entries = append(entries, ListSizeEntry{
			Practice: count.Practice,
			AchDate:  count.AchDate,
			AgeBand:  ageBand,
			Gender:   gender,
			ListSize: count.Count,
		})
	}
	return entries
}

// filterToActivePractices keeps list-size entries only for practices that were
// open and valid on the matching snapshot date. The inner join mirrors the
// publication rule that a closed practice contributes no denominator.
func filterToActivePractices(entries []ListSizeEntry, practices []PracticeInfo) []ListSizeEntry {
	active := make(map[practiceKey]struct{}, len(practices))
	for _, practice := range practices {
		active[practiceKey{achDate: practice.AchDate, practice: practice.Practice}] = struct{}{}
	}
	var filtered []ListSizeEntry
	for _, entry := range entries {
		if _, ok := active[practiceKey{achDate: entry.AchDate, practice: entry.Practice}]; ok {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// aggregateListSizeByMeasure sums denominators per group for one breakdown,
// the same grouping pattern the opt-out counts use.
func aggregateListSizeByMeasure(entries []ListSizeEntry, measure measureSet, fill string) map[demographicKey]int {
	totals := make(map[demographicKey]int)
	for _, entry := range entries {
		totals[measure.keyFor(entry.AchDate, entry.AgeBand, entry.Gender, fill)] += entry.ListSize
	}
	return totals
}

// listSizeForAgeGen produces the denominator lookup covering every breakdown
// of the age/gender output. Each numerator group joins against exactly one of
// these keys; groups with no denominator (the unknown categories and the
// deceased fills) are simply absent and join to zero.
func listSizeForAgeGen(entries []ListSizeEntry) map[demographicKey]int {
	totals := make(map[demographicKey]int)
	for _, measure := range livingMeasures {
		for key, total := range aggregateListSizeByMeasure(entries, measure, allCategory) {
			totals[key] = total
		}
	}
	return totals
}

func aggregateListSizeByMonth(entries []ListSizeEntry) map[time.Time]int {
	totals := make(map[time.Time]int)
	for _, entry := range entries {
		totals[entry.AchDate] += entry.ListSize
	}
	return totals
}

func aggregateListSizeByPractice(entries []ListSizeEntry) map[practiceKey]int {
	totals := make(map[practiceKey]int)
	for _, entry := range entries {
		totals[practiceKey{achDate: entry.AchDate, practice: entry.Practice}] += entry.ListSize
	}
	return totals
}
