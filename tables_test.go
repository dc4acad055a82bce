package main

import "testing"

func TestCreateTable1EnglandTotals(t *testing.T) {
	may := date(2022, 5, 1)
	june := date(2022, 6, 1)
	living := []MonthlyRecord{
		monthlyRecord(may, "4857773456", "40-49", "Female"),
		monthlyRecord(june, "4857773456", "40-49", "Female"),
		monthlyRecord(june, "6152349087", "20-29", "Male"),
	}
	deceased := []MonthlyRecord{
		monthlyRecord(june, "7203941856", "70-79", "Male"),
	}
	listSizes := []ListSizeEntry{
		{Practice: "A81001", AchDate: may, ListSize: 100},
		{Practice: "A81001", AchDate: june, ListSize: 100},
	}

	rows := createTable1(living, deceased, listSizes)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Date != "01 June 2022" {
		t.Fatalf("expected newest month first, got %s", first.Date)
	}
	if first.ONSCode != "E92000001" || first.Code != "Eng" || first.Name != "England" {
		t.Fatalf("unexpected geography cells: %+v", first)
	}
	if first.OptOut != 2 || first.ListSize != 100 || first.Rate != 2 || first.Deceased != 1 {
		t.Fatalf("unexpected June totals: %+v", first)
	}
	if rows[1].Deceased != 0 {
		t.Fatalf("expected no May deceased, got %+v", rows[1])
	}
}

func TestCreateTable2CurrentMonthReshape(t *testing.T) {
	dates := ReportDates{StartDate: date(2022, 5, 1), EndDate: date(2022, 6, 1)}
	june := date(2022, 6, 1)
	may := date(2022, 5, 1)
	ageGen := []AgeGenRow{
		{AchDate: june, AgeBand: "40-49", Gender: "Female", OptOut: 5, ListSize: 50, OptOutRate: 10},
		{AchDate: june, AgeBand: "90+", Gender: "Male", OptOut: 0, ListSize: 0, OptOutRate: 0},
		{AchDate: june, AgeBand: allCategory, Gender: "Female", OptOut: 5, ListSize: 50, OptOutRate: 10},
		{AchDate: june, AgeBand: allCategory, Gender: allCategory, OptOut: 5, ListSize: 50, OptOutRate: 10},
		{AchDate: june, AgeBand: allCategory, Gender: unknownGender, OptOut: 1, ListSize: 0, OptOutRate: 0},
		{AchDate: june, AgeBand: allDeceased, Gender: "Male", OptOut: 2, ListSize: 0, OptOutRate: 0},
		{AchDate: june, AgeBand: allDeceased, Gender: allDeceased, OptOut: 2, ListSize: 0, OptOutRate: 0},
		{AchDate: may, AgeBand: "40-49", Gender: "Female", OptOut: 4, ListSize: 50, OptOutRate: 8},
	}

	cells := createTable2(ageGen, dates)
	if len(cells) != 4 {
		t.Fatalf("expected 4 rows after filtering, got %d", len(cells))
	}
	if cells[0][0] != "40 to 49" || cells[0][1] != "Female" {
		t.Fatalf("unexpected first row: %v", cells[0])
	}
	if cells[1][0] != "90 +" || cells[1][2] != symbolNotApplicable || cells[1][4] != symbolNotApplicable {
		t.Fatalf("expected zeros shown as %q: %v", symbolNotApplicable, cells[1])
	}
	if cells[2][0] != allCategory || cells[2][1] != unknownGender {
		t.Fatalf("expected undisclosed-gender total kept: %v", cells[2])
	}
	last := cells[len(cells)-1]
	if last[0] != "Deceased" || last[1] != "Male" {
		t.Fatalf("expected deceased rows moved to the end, got %v", last)
	}
}

func TestCreateTable3Cohorts(t *testing.T) {
	dates := ReportDates{StartDate: date(2022, 5, 1), EndDate: date(2022, 6, 1)}
	june := date(2022, 6, 1)
	regGeo := []RegGeoRow{
		{AchDate: june, Practice: "C83003", PracticeName: "Riverside Practice", OptOut: 0, ListSize: 80},
		{AchDate: june, Practice: "A81001", PracticeName: "Test Surgery", OptOut: 5, ListSize: 100},
		{AchDate: june, Practice: unallocated, PracticeName: unallocated, OptOut: 3, ListSize: 0},
		{AchDate: date(2022, 5, 1), Practice: "A81001", PracticeName: "Test Surgery", OptOut: 4, ListSize: 100},
	}

	cells := createTable3(regGeo, dates)
	if len(cells) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(cells))
	}
	if cells[0][0] != "A81001" || cells[0][2] != 5 || cells[0][4] != 5.0 {
		t.Fatalf("unexpected standard row: %v", cells[0])
	}
	if cells[1][0] != "C83003" || cells[1][2] != symbolZero {
		t.Fatalf("expected zero-opt-out count shown as %q: %v", symbolZero, cells[1])
	}
	last := cells[2]
	if last[0] != unallocated || last[4] != symbolNotApplicable {
		t.Fatalf("expected Unallocated row last with rate %q, got %v", symbolNotApplicable, last)
	}
}

func TestCreateTable4SubICBRollup(t *testing.T) {
	dates := ReportDates{StartDate: date(2022, 5, 1), EndDate: date(2022, 6, 1)}
	june := date(2022, 6, 1)
	regGeo := []RegGeoRow{
		{
			AchDate: june, Practice: "A81001",
			SubICBLocationCode: "16C", ONSSubICBLocationCode: "E38000220", SubICBLocationName: "NHS Tees Valley Sub-ICB",
			OptOut: 5, ListSize: 100,
		},
		{
			AchDate: june, Practice: "B82002",
			SubICBLocationCode: "16C", ONSSubICBLocationCode: "E38000220", SubICBLocationName: "NHS Tees Valley Sub-ICB",
			OptOut: 3, ListSize: 100,
		},
		{
			AchDate: june, Practice: "C83003",
			SubICBLocationCode: "15E", ONSSubICBLocationCode: "E38000062", SubICBLocationName: "NHS Birmingham and Solihull Sub-ICB",
			OptOut: 0, ListSize: 0,
		},
	}
	deceased := []MonthlyRecord{
		{PatientRecord: PatientRecord{NHSNumber: "7203941856", Practice: "A81001"}, AchDate: june},
		{PatientRecord: PatientRecord{NHSNumber: "9450137268", Practice: "Z99999"}, AchDate: june},
	}

	cells := createTable4(regGeo, deceased, dates)
	if len(cells) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(cells))
	}
	if cells[0][1] != "15E" || cells[0][5] != symbolNotApplicable {
		t.Fatalf("expected empty-list group rated %q, got %v", symbolNotApplicable, cells[0])
	}
	teesValley := cells[1]
	if teesValley[1] != "16C" || teesValley[3] != 8 || teesValley[4] != 200 || teesValley[5] != 4.0 || teesValley[6] != 1 {
		t.Fatalf("unexpected rollup: %v", teesValley)
	}
	unalloc := cells[2]
	if unalloc[1] != unallocated || unalloc[6] != 1 {
		t.Fatalf("expected unseen deceased practice grouped under Unallocated, got %v", unalloc)
	}
}
