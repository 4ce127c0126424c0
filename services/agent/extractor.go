package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Intent is the ephemeral result of extracting scheduling details from free text.
// Date and Time are empty when the text carries none; DurationMinutes always has
// a value (60 unless the text says otherwise).
type Intent struct {
	Date            string // YYYY-MM-DD
	Time            string // HH:MM:SS, 24-hour
	DurationMinutes int
}

const defaultDurationMinutes = 60

// monthEntry pairs a month surface form with its calendar number. The slice order
// is the match order: the first month whose patterns hit anywhere in the text wins,
// even when another month name appears earlier in the text. That enumeration-order
// precedence is long-standing behavior callers rely on, so it stays.
type monthEntry struct {
	num      string
	patterns [3]*regexp.Regexp
}

var monthEntries = buildMonthEntries()

func buildMonthEntries() []monthEntry {
	names := []struct{ name, num string }{
		{"january", "01"}, {"jan", "01"},
		{"february", "02"}, {"feb", "02"},
		{"march", "03"}, {"mar", "03"},
		{"april", "04"}, {"apr", "04"},
		{"may", "05"},
		{"june", "06"}, {"jun", "06"},
		{"july", "07"}, {"jul", "07"},
		{"august", "08"}, {"aug", "08"},
		{"september", "09"}, {"sep", "09"}, {"sept", "09"},
		{"october", "10"}, {"oct", "10"},
		{"november", "11"}, {"nov", "11"},
		{"december", "12"}, {"dec", "12"},
	}
	entries := make([]monthEntry, 0, len(names))
	for _, m := range names {
		entries = append(entries, monthEntry{
			num: m.num,
			patterns: [3]*regexp.Regexp{
				// "8th July", "8 July"
				regexp.MustCompile(`(\d{1,2})\s*(st|nd|rd|th)?\s*` + m.name),
				// "July 8"
				regexp.MustCompile(m.name + `\s*(\d{1,2})`),
				// "8July"
				regexp.MustCompile(`(\d{1,2})\s*` + m.name),
			},
		})
	}
	return entries
}

var (
	reClockMeridiem = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm)`)
	reHourMeridiem  = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)
	reClock24       = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	reOClock        = regexp.MustCompile(`(\d{1,2})\s*o'?clock`)
)

// durationRules are tested in order; the first hit wins, so longer phrases such
// as "2 hour" are checked before "1 hour".
var durationRules = []struct {
	re      *regexp.Regexp
	minutes int
}{
	{regexp.MustCompile(`30[-\s]*(minute|min)`), 30},
	{regexp.MustCompile(`90[-\s]*(minute|min)`), 90},
	{regexp.MustCompile(`1\.5[-\s]*hour`), 90},
	{regexp.MustCompile(`2[-\s]*hour`), 120},
	{regexp.MustCompile(`(half|0\.5)[-\s]*hour`), 30},
	{regexp.MustCompile(`1[-\s]*hour`), 60},
}

// Extract pulls a calendar date, a clock time and a duration out of free text.
// "tomorrow" and "today" take precedence over explicit day-and-month mentions;
// the year is always the current calendar year.
func Extract(text string, now time.Time) Intent {
	lower := strings.ToLower(text)
	return Intent{
		Date:            extractDate(lower, now),
		Time:            extractTime(lower),
		DurationMinutes: extractDuration(lower),
	}
}

func extractDate(lower string, now time.Time) string {
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	}
	if strings.Contains(lower, "today") {
		return now.Format("2006-01-02")
	}
	for _, month := range monthEntries {
		for _, pattern := range month.patterns {
			m := pattern.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			day, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return fmt.Sprintf("%d-%s-%02d", now.Year(), month.num, day)
		}
	}
	return ""
}

func extractTime(lower string) string {
	if m := reClockMeridiem.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return clockString(to24Hour(hour, m[3]), minute)
	}
	if m := reHourMeridiem.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return clockString(to24Hour(hour, m[2]), 0)
	}
	if m := reClock24.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return clockString(hour, minute)
	}
	if m := reOClock.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		return clockString(hour, 0)
	}
	return ""
}

// to24Hour applies the standard 12-hour conversion: 12am is midnight, 12pm is
// noon, any other pm hour gains 12.
func to24Hour(hour int, meridiem string) int {
	switch {
	case meridiem == "pm" && hour != 12:
		return hour + 12
	case meridiem == "am" && hour == 12:
		return 0
	default:
		return hour
	}
}

func clockString(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d:00", hour, minute)
}

func extractDuration(lower string) int {
	for _, rule := range durationRules {
		if rule.re.MatchString(lower) {
			return rule.minutes
		}
	}
	return defaultDurationMinutes
}
