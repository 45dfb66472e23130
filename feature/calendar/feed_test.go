package calendar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildFeed wraps VEVENT bodies (one content line per element) into a calendar document.
func buildFeed(events ...[]string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//calendar-sync//test//EN"}
	for _, ev := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, ev...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func mustParse(t *testing.T, events ...[]string) []ParsedEvent {
	t.Helper()
	parsed, err := ParseFeed(buildFeed(events...), zap.NewNop())
	require.NoError(t, err)
	return parsed
}

// weeklyStandup recurs on 2024-06-01 and 2024-06-08.
var weeklyStandup = []string{
	"UID:standup@example.com",
	"SUMMARY:Standup",
	"DTSTART:20240601T090000Z",
	"DTEND:20240601T093000Z",
	"RRULE:FREQ=WEEKLY;COUNT=2",
}
