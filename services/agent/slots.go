package agent

import (
	"strings"
	"time"
)

// All civil datetime strings produced by the agent are interpreted under a fixed
// +05:30 offset; the offset is only made explicit at the gateway boundary.
var fixedZone = time.FixedZone("IST", 5*3600+30*60)

const civilLayout = "2006-01-02T15:04:05"

// BuildInterval combines an extracted date, clock time and duration into canonical
// start/end civil datetime strings. Both results are empty when either input is
// missing, signalling the caller to ask the user for the missing piece.
func BuildInterval(date, clock string, durationMinutes int) (string, string) {
	if date == "" || clock == "" {
		return "", ""
	}
	start := date + "T" + clock
	t, err := time.ParseInLocation(civilLayout, start, fixedZone)
	if err != nil {
		return "", ""
	}
	end := t.Add(time.Duration(durationMinutes) * time.Minute)
	return start, end.Format(civilLayout)
}

// WithOffset appends the fixed +05:30 offset to a datetime string that carries no
// zone information. Strings that already end in Z or an explicit offset pass
// through unchanged.
func WithOffset(s string) string {
	if strings.HasSuffix(s, "Z") || strings.Contains(s, "+") {
		return s
	}
	if len(s) >= 6 && strings.Contains(s[len(s)-6:], "-") {
		return s
	}
	return s + "+05:30"
}

// parseSlot accepts either a zoned RFC 3339 instant (as the gateway returns) or a
// bare civil string, rendered in the fixed offset.
func parseSlot(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(fixedZone), nil
	}
	return time.ParseInLocation(civilLayout, s, fixedZone)
}
