package core

import (
	"math"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"
)

// Numbers strictly inside this range are treated as spreadsheet date serials
// (mid 1968 to late 2036).
const (
	minDateSerial = 25000
	maxDateSerial = 50000
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// serialToTime decodes the calendar date of a 1900-system serial number.
// The time-of-day fraction is dropped.
func serialToTime(n float64) time.Time {
	t, err := excelize.ExcelDateToTime(math.Floor(n), false)
	if err != nil {
		// unreachable for serials in the date range
		return time.Time{}
	}
	return t
}

// parseISODate reads the calendar date from a string starting YYYY-MM-DD.
// Any time or zone suffix is ignored, so the written date is kept as is.
func parseISODate(s string) (time.Time, bool) {
	if !isoDatePrefix.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
