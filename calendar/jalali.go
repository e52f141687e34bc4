// Package calendar formats dates for display in the Gregorian or the
// Jalali (Solar Hijri) calendar.
package calendar

import (
	"fmt"
	"time"
)

const (
	Gregorian = "gregorian"
	Jalali    = "jalali"
)

// Valid reports whether name is a supported calendar.
func Valid(name string) bool {
	return name == Gregorian || name == Jalali
}

// cumulative day counts before each Gregorian month in a common year
var gregorianMonthOffsets = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// ToJalali converts a Gregorian date to its Jalali year, month and day.
func ToJalali(t time.Time) (year, month, day int) {
	gy, gm, gd := t.Year(), int(t.Month()), t.Day()

	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}

	days := 355666 + 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 + gd + gregorianMonthOffsets[gm-1]

	year = -1595 + 33*(days/12053)
	days %= 12053
	year += 4 * (days / 1461)
	days %= 1461
	if days > 365 {
		year += (days - 1) / 365
		days = (days - 1) % 365
	}

	// first six months have 31 days, the next five 30, the last 29 or 30
	if days < 186 {
		month = 1 + days/31
		day = 1 + days%31
	} else {
		month = 7 + (days-186)/30
		day = 1 + (days-186)%30
	}
	return year, month, day
}

// FormatDate renders t as YYYY/MM/DD in the named calendar.
// The zero time renders as "".
func FormatDate(t time.Time, cal string) string {
	if t.IsZero() {
		return ""
	}
	if cal == Jalali {
		y, m, d := ToJalali(t)
		return fmt.Sprintf("%04d/%02d/%02d", y, m, d)
	}
	return t.Format("2006/01/02")
}

// FormatDateTime renders t as YYYY/MM/DD HH:MM in the named calendar,
// converting to loc first.
func FormatDateTime(t time.Time, cal string, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return FormatDate(t, cal) + t.Format(" 15:04")
}
