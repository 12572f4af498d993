// Package daterange parses the free-text date ranges found in campaign
// planning sheets ("Jan 5 - Mar 2") into a start date and a day count.
package daterange

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReferenceYear is the year assigned to every parsed start date. Ranges whose
// end month precedes the start month roll the end date into the next year.
// Campaigns spanning more than that are not representable.
const ReferenceYear = 2025

const day = 24 * time.Hour

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var rangePattern = regexp.MustCompile(`([A-Za-z]{3})\s*(\d{1,2})\s*-\s*([A-Za-z]{3})\s*(\d{1,2})`)

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// Range is a parsed date range.
type Range struct {
	Start    time.Time
	Duration int // days, always > 0
}

// End returns Start shifted by Duration days.
func (r Range) End() time.Time {
	return r.Start.AddDate(0, 0, r.Duration)
}

// Parse converts text such as "Nov 20 – Jan 5" into a Range. The second
// return value is false for empty input, unrecognised months or a
// non-positive span; malformed input never produces an error.
func Parse(text string) (Range, bool) {
	cleaned := strings.TrimSpace(dashReplacer.Replace(text))
	if cleaned == "" || !strings.Contains(cleaned, "-") {
		return Range{}, false
	}

	m := rangePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return Range{}, false
	}

	startMonth, ok := months[m[1]]
	if !ok {
		return Range{}, false
	}
	endMonth, ok := months[m[3]]
	if !ok {
		return Range{}, false
	}

	startDay, err := strconv.Atoi(m[2])
	if err != nil {
		return Range{}, false
	}
	endDay, err := strconv.Atoi(m[4])
	if err != nil {
		return Range{}, false
	}

	endYear := ReferenceYear
	if endMonth < startMonth {
		endYear++
	}

	start := Date(ReferenceYear, startMonth, startDay)
	end := Date(endYear, endMonth, endDay)

	duration := int(math.Ceil(float64(end.Sub(start)) / float64(day)))
	if duration <= 0 {
		return Range{}, false
	}
	return Range{Start: start, Duration: duration}, true
}

// Date builds a calendar date at UTC midnight. Out-of-range days normalise
// the way time.Date does (Feb 31 becomes Mar 3).
func Date(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day from t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysBetween returns the ceiling of the day count from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Ceil(float64(b.Sub(a)) / float64(day)))
}
