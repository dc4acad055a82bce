package main

import "time"

// PracticeInfo is one practice's reference record as of a snapshot date,
// carrying the three commissioning-geography levels it rolls up into. The ONS
// codes and names are filled in from the geography-equivalents reference.
type PracticeInfo struct {
	Practice string
	Name     string
	Postcode string
	AchDate  time.Time

	SubICBLocationCode    string
	ONSSubICBLocationCode string
	SubICBLocationName    string

	ICBCode    string
	ONSICBCode string
	ICBName    string

	CommRegionCode    string
	ONSCommRegionCode string
	CommRegionName    string
}

// GeographyName maps an administrative geography code to its name and ONS
// equivalent code.
type GeographyName struct {
	DHGeographyCode string
	DHGeographyName string
	ONSCode         string
}

// LSOAInfo maps a small-area residence code to its name, sub-ICB location and
// local authority.
type LSOAInfo struct {
	LSOACode string
	LSOAName string

	SubICBLocationCode    string
	ONSSubICBLocationCode string
	SubICBLocationName    string

	LACode string
	LAName string
}

// mapPracticeGeographies joins the geography-equivalents reference onto each
// practice once per geography level. Codes missing from the reference leave
// the name and ONS code empty; downstream output rules turn those into
// Unallocated.
func mapPracticeGeographies(practices []PracticeInfo, reference []GeographyName) []PracticeInfo {
	names := make(map[string]GeographyName, len(reference))
	for _, geography := range reference {
		names[geography.DHGeographyCode] = geography
	}
	mapped := make([]PracticeInfo, 0, len(practices))
	for _, practice := range practices {
		if geography, ok := names[practice.SubICBLocationCode]; ok {
			practice.SubICBLocationName = geography.DHGeographyName
			practice.ONSSubICBLocationCode = geography.ONSCode
		}
		if geography, ok := names[practice.ICBCode]; ok {
			practice.ICBName = geography.DHGeographyName
			practice.ONSICBCode = geography.ONSCode
		}
		if geography, ok := names[practice.CommRegionCode]; ok {
			practice.CommRegionName = geography.DHGeographyName
			practice.ONSCommRegionCode = geography.ONSCode
		}
		mapped = append(mapped, practice)
	}
	return mapped
}

func practiceLookup(practices []PracticeInfo) map[practiceKey]PracticeInfo {
	lookup := make(map[practiceKey]PracticeInfo, len(practices))
	for _, practice := range practices {
		lookup[practiceKey{achDate: practice.AchDate, practice: practice.Practice}] = practice
	}
	return lookup
}

func lsoaLookup(mappings []LSOAInfo) map[string]LSOAInfo {
	lookup := make(map[string]LSOAInfo, len(mappings))
	for _, mapping := range mappings {
		lookup[mapping.LSOACode] = mapping
	}
	return lookup
}
