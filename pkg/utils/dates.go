package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TomorrowPattern matches "tomorrow" and its common misspellings
const TomorrowPattern = `(?:tomorrow|tommorow|tomorow|tommorrow|tomorrrow|tomarow|tmrw)`

var monthMap = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May, "june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var weekdayMap = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`

type dateRule struct {
	re      *regexp.Regexp
	resolve func(m []string, today time.Time) (time.Time, bool)
}

// Rules are tried in order; "day after tomorrow" must precede "tomorrow".
var dateRules = []dateRule{
	{
		re: regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
		resolve: func(m []string, today time.Time) (time.Time, bool) {
			t, err := time.ParseInLocation("2006-01-02", m[0], today.Location())
			return t, err == nil
		},
	},
	{
		re: regexp.MustCompile(`\bday after ` + TomorrowPattern + `\b`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 0, 2), true
		},
	},
	{
		re: regexp.MustCompile(`\b` + TomorrowPattern + `\b`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 0, 1), true
		},
	},
	{
		re: regexp.MustCompile(`\b(?:today|tonight)\b`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today, true
		},
	},
	{
		re: regexp.MustCompile(`\bnext week\b`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 0, 7), true
		},
	},
	{
		re: regexp.MustCompile(`\bnext month\b`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return NextMonthDate(today), true
		},
	},
	{
		re: regexp.MustCompile(`\b(?:(?:next|this|on|coming)\s+)?(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`),
		resolve: func(m []string, today time.Time) (time.Time, bool) {
			wd := weekdayMap[m[1]]
			ahead := (int(wd) - int(today.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return today.AddDate(0, 0, ahead), true
		},
	},
	{
		re: regexp.MustCompile(`\b` + monthPattern + `\s+(\d{1,2})(?:st|nd|rd|th)?\b`),
		resolve: func(m []string, today time.Time) (time.Time, bool) {
			return monthDay(monthMap[m[1]], m[2], today)
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `\b`),
		resolve: func(m []string, today time.Time) (time.Time, bool) {
			return monthDay(monthMap[m[2]], m[1], today)
		},
	},
}

// NextMonthDate returns the 15th of next month when today is on or before
// the 15th, otherwise the 1st of next month.
func NextMonthDate(today time.Time) time.Time {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, 1, 0)
	if today.Day() <= 15 {
		return first.AddDate(0, 0, 14)
	}
	return first
}

func monthDay(month time.Month, dayStr string, today time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
	if t.Month() != month {
		// "feb 30" normalizes into march
		return time.Time{}, false
	}
	// dates already behind us refer to next year
	if t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return t, true
}

// DateMatch is a date expression located in free text
type DateMatch struct {
	Date  time.Time
	Start int
	End   int
}

// FindDate returns the earliest date expression in text, resolved against
// now's calendar day in now's location.
func FindDate(text string, now time.Time) (DateMatch, bool) {
	lower := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var best DateMatch
	found := false
	for _, rule := range dateRules {
		loc := rule.re.FindStringSubmatchIndex(lower)
		if loc == nil {
			continue
		}
		if found && loc[0] >= best.Start {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = lower[loc[2*i]:loc[2*i+1]]
			}
		}
		t, ok := rule.resolve(m, today)
		if !ok {
			continue
		}
		best = DateMatch{Date: t, Start: loc[0], End: loc[1]}
		found = true
	}
	return best, found
}
