package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReportDates describes the reporting window for one publication run. The
// start date is always derived from the end date and the period length, never
// supplied directly.
type ReportDates struct {
	StartDate      time.Time
	EndDate        time.Time
	PublishingDate time.Time
	Months         int
}

func newReportDates(endDate string, pubDate string, months int) (ReportDates, error) {
	if months <= 0 {
		return ReportDates{}, errors.New("reporting period must be a positive number of months")
	}
	end, err := parseDate(endDate)
	if err != nil {
		return ReportDates{}, fmt.Errorf("invalid reporting end date: %w", err)
	}
	pub, err := parseDate(pubDate)
	if err != nil {
		return ReportDates{}, fmt.Errorf("invalid publishing date: %w", err)
	}
	end = dateOnly(end)
	return ReportDates{
		StartDate:      subtractMonths(end, months),
		EndDate:        end,
		PublishingDate: dateOnly(pub),
		Months:         months,
	}, nil
}

// subtractMonths moves a date back by a number of calendar months, clamping to
// the last day of the target month rather than letting time.AddDate roll over
// (2022-03-31 minus one month is 2022-02-28, not 2022-03-03).
func subtractMonths(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0)
	last := first.AddDate(0, 1, -1)
	if day > last.Day() {
		day = last.Day()
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// ReportingMonths returns every calendar-month start within the reporting
// window, ascending. The end date is included when it falls on a month
// boundary. Every snapshot the pipeline takes comes from this list; all other
// code treats dates as opaque.
func (rd ReportDates) ReportingMonths() []time.Time {
	first := time.Date(rd.StartDate.Year(), rd.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	if first.Before(rd.StartDate) {
		first = first.AddDate(0, 1, 0)
	}
	var months []time.Time
	for date := first; !date.After(rd.EndDate); date = date.AddDate(0, 1, 0) {
		months = append(months, date)
	}
	return months
}

// CurrentMonth returns the final snapshot date of the window, the month the
// single-month presentation tables report on.
func (rd ReportDates) CurrentMonth() time.Time {
	months := rd.ReportingMonths()
	if len(months) == 0 {
		return rd.EndDate
	}
	return months[len(months)-1]
}

// FormatPublishingDate renders the publication date with an ordinal day
// suffix, e.g. "2nd June 2022", for the workbook title sheet.
func (rd ReportDates) FormatPublishingDate() string {
	day := rd.PublishingDate.Day()
	return fmt.Sprintf("%d%s %s", day, ordinalSuffix(day), rd.PublishingDate.Format("January 2006"))
}

func ordinalSuffix(day int) string {
	if day >= 4 && day <= 20 || day >= 24 && day <= 30 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// MonthYear renders the reporting month in the Mon_YYYY form used in output
// file names, e.g. "Jun_2022".
func (rd ReportDates) MonthYear() string {
	return rd.EndDate.Format("Jan_2006")
}

func (rd ReportDates) StartMonthYearLabel() string {
	return rd.StartDate.Format("January 2006")
}

func (rd ReportDates) EndMonthYearLabel() string {
	return rd.EndDate.Format("January 2006")
}

// formatPublicationDate is the dd/mm/yyyy date format used in every delimited
// output.
func formatPublicationDate(date time.Time) string {
	return date.Format("02/01/2006")
}

func formatFullDate(date time.Time) string {
	return date.Format("02 January 2006")
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"02/01/2006",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

func dateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return value
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
