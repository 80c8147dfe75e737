// Package banglacal converts Gregorian dates to the revised Bangla calendar
// used in Bangladesh (new year on 14 April; the first six months have 31
// days, the next five 30, and Falgun gains a day when the Gregorian leap day
// falls inside it).
package banglacal

import (
	"strconv"
	"strings"
	"time"
)

// Date is a fully localised Bangla calendar date.
type Date struct {
	Day     string // Bengali numerals, eg. "২৩"
	Month   string // eg. "কার্তিক"
	Year    string // Bengali numerals, eg. "১৪৩২"
	Weekday string // eg. "রবিবার"
	Season  string // eg. "হেমন্ত"
}

var months = []string{
	"বৈশাখ", "জ্যৈষ্ঠ", "আষাঢ়", "শ্রাবণ", "ভাদ্র", "আশ্বিন",
	"কার্তিক", "অগ্রহায়ণ", "পৌষ", "মাঘ", "ফাল্গুন", "চৈত্র",
}

// Two months per season, in month order.
var seasons = []string{"গ্রীষ্ম", "বর্ষা", "শরৎ", "হেমন্ত", "শীত", "বসন্ত"}

var weekdays = map[time.Weekday]string{
	time.Sunday:    "রবিবার",
	time.Monday:    "সোমবার",
	time.Tuesday:   "মঙ্গলবার",
	time.Wednesday: "বুধবার",
	time.Thursday:  "বৃহস্পতিবার",
	time.Friday:    "শুক্রবার",
	time.Saturday:  "শনিবার",
}

var digits = [10]rune{'০', '১', '২', '৩', '৪', '৫', '৬', '৭', '৮', '৯'}

// Digits renders n in Bengali numerals.
func Digits(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(digits[r-'0'])
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// monthLengths returns the month lengths for the Bangla year starting in
// Gregorian year startYear. Falgun spans the following Gregorian February,
// so it carries that year's leap day.
func monthLengths(startYear int) [12]int {
	l := [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 29, 30}
	if isLeap(startYear + 1) {
		l[10] = 30
	}
	return l
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// FromGregorian converts t (interpreted in its own location) to a Bangla
// calendar date.
func FromGregorian(t time.Time) Date {
	y, m, d := t.Date()

	startYear := y
	newYear := time.Date(y, time.April, 14, 0, 0, 0, 0, t.Location())
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	if midnight.Before(newYear) {
		startYear = y - 1
		newYear = time.Date(startYear, time.April, 14, 0, 0, 0, 0, t.Location())
	}

	days := int(midnight.Sub(newYear).Hours() / 24)

	lengths := monthLengths(startYear)
	month := 0
	for month < 11 && days >= lengths[month] {
		days -= lengths[month]
		month++
	}

	return Date{
		Day:     Digits(days + 1),
		Month:   months[month],
		Year:    Digits(startYear - 593),
		Weekday: weekdays[t.Weekday()],
		Season:  seasons[month/2],
	}
}
