package main

import (
	"reflect"
	"testing"
)

func sampleAgeGenInputs() (living []MonthlyRecord, deceased []MonthlyRecord, listSizes []ListSizeEntry) {
	june := date(2022, 6, 1)
	living = []MonthlyRecord{
		monthlyRecord(june, "4857773456", "40-49", "Female"),
		monthlyRecord(june, "6152349087", "40-49", "Male"),
		monthlyRecord(june, "5031287694", "20-29", "Female"),
		monthlyRecord(june, "8861402375", unknownAge, unknownGender),
	}
	deceased = []MonthlyRecord{
		monthlyRecord(june, "7203941856", "70-79", "Male"),
	}
	listSizes = []ListSizeEntry{
		{Practice: "A81001", AchDate: june, AgeBand: "40-49", Gender: "Female", ListSize: 50},
		{Practice: "A81001", AchDate: june, AgeBand: "40-49", Gender: "Male", ListSize: 40},
		{Practice: "A81001", AchDate: june, AgeBand: "20-29", Gender: "Female", ListSize: 30},
	}
	return living, deceased, listSizes
}

func TestCreateAgeGenTableJoinIsTotal(t *testing.T) {
	living, deceased, listSizes := sampleAgeGenInputs()
	rows := createAgeGenTable(living, deceased, listSizes)
	if len(rows) == 0 {
		t.Fatal("expected rows")
	}
	for _, row := range rows {
		if row.ListSize < 0 {
			t.Fatalf("negative denominator in %+v", row)
		}
		if row.ListSize == 0 && row.OptOutRate != 0 {
			t.Fatalf("zero denominator must give zero rate, got %+v", row)
		}
		if row.OptOutRate != optOutRate(row.OptOut, row.ListSize) {
			t.Fatalf("rate does not match count and denominator: %+v", row)
		}
	}
}

func TestCreateAgeGenTableSuppression(t *testing.T) {
	living, deceased, listSizes := sampleAgeGenInputs()
	rows := createAgeGenTable(living, deceased, listSizes)

	sawUnknownGenderTotal := false
	for _, row := range rows {
		if row.Gender != unknownGender {
			continue
		}
		if row.AgeBand != allCategory && row.AgeBand != allDeceased {
			t.Fatalf("age-disaggregated undisclosed-gender row survived: %+v", row)
		}
		sawUnknownGenderTotal = true
	}
	if !sawUnknownGenderTotal {
		t.Fatal("undisclosed-gender total row was suppressed but must be kept")
	}
}

func TestCreateAgeGenTableOrdering(t *testing.T) {
	june := date(2022, 6, 1)
	may := date(2022, 5, 1)
	living := []MonthlyRecord{
		monthlyRecord(may, "4857773456", "40-49", "Female"),
		monthlyRecord(june, "4857773456", "40-49", "Female"),
		monthlyRecord(june, "6152349087", "20-29", "Male"),
	}
	rows := createAgeGenTable(living, nil, nil)

	if !rows[0].AchDate.Equal(june) {
		t.Fatalf("expected newest month first, got %s", rows[0].AchDate.Format("2006-01-02"))
	}
	lastJune := -1
	for i, row := range rows {
		if row.AchDate.Equal(june) {
			if lastJune >= 0 && i != lastJune+1 {
				t.Fatalf("June rows are not contiguous at index %d", i)
			}
			lastJune = i
		}
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i].AchDate.Equal(rows[i-1].AchDate) {
			continue
		}
		prev, cur := rows[i-1], rows[i]
		if genderRank(cur.Gender) < genderRank(prev.Gender) {
			t.Fatalf("gender order violated at index %d: %s after %s", i, cur.Gender, prev.Gender)
		}
		if cur.Gender == prev.Gender && ageBandRank(cur.AgeBand) < ageBandRank(prev.AgeBand) {
			t.Fatalf("age band order violated at index %d: %s after %s", i, cur.AgeBand, prev.AgeBand)
		}
	}
}

func TestAgeGenCSVRecordsDeterministic(t *testing.T) {
	living, deceased, listSizes := sampleAgeGenInputs()

	first := ageGenCSVRecords(createAgeGenTable(living, deceased, listSizes))
	second := ageGenCSVRecords(createAgeGenTable(living, deceased, listSizes))
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated runs over identical input produced different records")
	}

	header := []string{"ACH_DATE", "AGE_BAND", "GENDER", "OPT_OUT", "LIST_SIZE", "OPT_OUT_RATE"}
	if !reflect.DeepEqual(first[0], header) {
		t.Fatalf("unexpected header: %v", first[0])
	}
	if first[1][0] != "01/06/2022" {
		t.Fatalf("expected dd/mm/yyyy dates, got %s", first[1][0])
	}
}

func TestFormatRate(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{2.5, "2.5"},
	}
	for _, tc := range cases {
		if got := formatRate(tc.rate); got != tc.want {
			t.Fatalf("formatRate(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}
