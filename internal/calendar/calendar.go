// Package calendar converts between floating local wall-clock timestamps
// and signed second offsets from 1970-01-01 00:00:00.
//
// "Floating" means no timezone, no DST, no leap seconds: every day is
// exactly 86400 seconds and the value is whatever the wall clock read.
// Day counting is proleptic Gregorian, so offsets round-trip for every
// supported date, including (on decode) dates before 1970.
package calendar

import "fmt"

const (
	// MinYear and MaxYear bound the encodable range. The upper bound is
	// why offsets are 64-bit: 4999-12-31 encodes to ~9.6e10 seconds.
	MinYear = 1970
	MaxYear = 4999

	secondsPerDay = 86400
)

// DateTime is one floating local wall-clock reading.
type DateTime struct {
	Year   int
	Month  int // 1-12
	Day    int // 1-31, validated against the real month length
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// Validate checks that dt names a real Gregorian calendar moment within
// the supported year range.
func (dt DateTime) Validate() error {
	if dt.Year < MinYear || dt.Year > MaxYear {
		return fmt.Errorf("year %d out of range [%d, %d]", dt.Year, MinYear, MaxYear)
	}
	if dt.Month < 1 || dt.Month > 12 {
		return fmt.Errorf("month %d out of range [1, 12]", dt.Month)
	}
	if max := daysInMonth(dt.Year, dt.Month); dt.Day < 1 || dt.Day > max {
		return fmt.Errorf("day %d out of range [1, %d] for %04d-%02d", dt.Day, max, dt.Year, dt.Month)
	}
	if dt.Hour < 0 || dt.Hour > 23 {
		return fmt.Errorf("hour %d out of range [0, 23]", dt.Hour)
	}
	if dt.Minute < 0 || dt.Minute > 59 {
		return fmt.Errorf("minute %d out of range [0, 59]", dt.Minute)
	}
	if dt.Second < 0 || dt.Second > 59 {
		return fmt.Errorf("second %d out of range [0, 59]", dt.Second)
	}
	return nil
}

// Encode converts a validated DateTime to its second offset from
// 1970-01-01 00:00:00. The result is non-negative for the whole
// encodable range.
func Encode(dt DateTime) (int64, error) {
	if err := dt.Validate(); err != nil {
		return 0, err
	}
	days := daysFromCivil(dt.Year, dt.Month, dt.Day)
	return days*secondsPerDay + int64(dt.Hour)*3600 + int64(dt.Minute)*60 + int64(dt.Second), nil
}

// Decode converts a second offset back to the wall-clock reading it
// encodes. Division is floor-based so negative offsets (dates before
// 1970-01-01) decode correctly.
func Decode(offset int64) DateTime {
	days := floorDiv(offset, secondsPerDay)
	rem := offset - days*secondsPerDay

	y, mo, d := civilFromDays(days)
	return DateTime{
		Year:   y,
		Month:  mo,
		Day:    d,
		Hour:   int(rem / 3600),
		Minute: int(rem / 60 % 60),
		Second: int(rem % 60),
	}
}

// IsLeap reports whether y is a Gregorian leap year.
func IsLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInMonth(y, m int) int {
	switch m {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if IsLeap(y) {
			return 29
		}
		return 28
	}
}

// daysFromCivil returns the proleptic Gregorian day count of y-m-d
// relative to 1970-01-01. Standard era decomposition: 400-year eras of
// 146097 days each, with the year pivoted to start in March so the leap
// day falls at the end.
func daysFromCivil(y, m, d int) int64 {
	yy := int64(y)
	if m <= 2 {
		yy--
	}
	era := floorDiv(yy, 400)
	yoe := yy - era*400 // [0, 399]

	mm := int64(m)
	var doy int64
	if m > 2 {
		doy = (153*(mm-3)+2)/5 + int64(d) - 1
	} else {
		doy = (153*(mm+9)+2)/5 + int64(d) - 1
	}
	doe := yoe*365 + yoe/4 - yoe/100 + doy // [0, 146096]

	return era*146097 + doe - 719468 // 719468 = days from 0000-03-01 to 1970-01-01
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(days int64) (y, m, d int) {
	z := days + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097                                        // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365       // [0, 399]
	yy := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)                     // [0, 365]
	mp := (5*doy + 2) / 153                                      // [0, 11], March-based
	d = int(doy - (153*mp+2)/5 + 1)
	if mp < 10 {
		m = int(mp + 3)
	} else {
		m = int(mp - 9)
	}
	if m <= 2 {
		yy++
	}
	return int(yy), m, d
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
