package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

const (
	propRecurrenceID = ical.ComponentProperty("RECURRENCE-ID")
	propRDate        = ical.ComponentProperty("RDATE")
	propDuration     = ical.ComponentProperty("DURATION")
	propStatus       = ical.ComponentProperty("STATUS")
	propMSAllDay     = ical.ComponentProperty("X-MICROSOFT-CDO-ALLDAYEVENT")
)

var errMissingUID = errors.New("missing UID")

// ParseFeed parses a calendar document into its VEVENTs.
// Events that cannot be read (for example without a UID) are logged and skipped.
func ParseFeed(body []byte, logger *zap.Logger) ([]ParsedEvent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty calendar body")
	}
	if !bytes.Contains(bytes.ToUpper(body), []byte("BEGIN:VCALENDAR")) {
		return nil, errors.New("body is not an iCalendar document")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	events := make([]ParsedEvent, 0)
	skipped := 0
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			skipped++
			logger.Warn("Skipping unreadable event", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}

	logger.Debug("Feed parsed", zap.Int("events", len(events)), zap.Int("skipped", skipped))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || strings.TrimSpace(uid.Value) == "" {
		return out, errMissingUID
	}
	out.UID = strings.TrimSpace(uid.Value)

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(propStatus); p != nil {
		out.Status = strings.ToUpper(strings.TrimSpace(p.Value))
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("event %s: missing DTSTART", out.UID)
	}
	start, err := parseTimestamp(dtStart.Value, dtStart.ICalParameters)
	if err != nil {
		return out, fmt.Errorf("event %s: DTSTART: %w", out.UID, err)
	}
	out.Start = start

	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		end, err := parseTimestamp(p.Value, p.ICalParameters)
		if err != nil {
			return out, fmt.Errorf("event %s: DTEND: %w", out.UID, err)
		}
		out.End = end
	} else if p := ve.GetProperty(propDuration); p != nil {
		d, err := parseDuration(p.Value)
		if err != nil {
			return out, fmt.Errorf("event %s: DURATION: %w", out.UID, err)
		}
		out.Duration = d
	} else if start.DateOnly {
		out.Duration = 24 * time.Hour
	}

	if p := ve.GetProperty(propMSAllDay); p != nil && strings.EqualFold(strings.TrimSpace(p.Value), "TRUE") {
		out.AllDay = true
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = strings.TrimSpace(p.Value)
	}

	out.RDates = parseTimestampList(ve.GetProperties(propRDate))
	out.ExDates = parseTimestampList(ve.GetProperties(ical.ComponentPropertyExdate))

	if p := ve.GetProperty(propRecurrenceID); p != nil {
		rid, err := parseTimestamp(p.Value, p.ICalParameters)
		if err != nil {
			return out, fmt.Errorf("event %s: RECURRENCE-ID: %w", out.UID, err)
		}
		out.RecurrenceID = &rid
	}

	out.RawText = rawText(ve)
	return out, nil
}

// parseTimestamp reads a DATE or DATE-TIME value together with its TZID and VALUE parameters.
// An unknown TZID degrades to a floating time.
func parseTimestamp(value string, params map[string][]string) (Timestamp, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Timestamp{}, errors.New("empty time value")
	}

	if strings.EqualFold(param(params, "VALUE"), "DATE") || !strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102", v, time.UTC)
		if err != nil {
			return Timestamp{}, err
		}
		return Timestamp{Time: t, DateOnly: true}, nil
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return Timestamp{}, err
		}
		return Timestamp{Time: t}, nil
	}

	if tzid := strings.Trim(param(params, "TZID"), `"`); tzid != "" {
		if loc, err := time.LoadLocation(tzid); err == nil {
			t, err := time.ParseInLocation("20060102T150405", v, loc)
			if err != nil {
				return Timestamp{}, err
			}
			return Timestamp{Time: t}, nil
		}
	}

	t, err := time.ParseInLocation("20060102T150405", v, time.UTC)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Time: t, Floating: true}, nil
}

// parseTimestampList reads comma separated EXDATE/RDATE values. PERIOD values keep their start.
func parseTimestampList(props []*ical.IANAProperty) []Timestamp {
	var out []Timestamp
	for _, p := range props {
		for _, part := range strings.Split(p.Value, ",") {
			part, _, _ = strings.Cut(strings.TrimSpace(part), "/")
			if part == "" {
				continue
			}
			if ts, err := parseTimestamp(part, p.ICalParameters); err == nil {
				out = append(out, ts)
			}
		}
	}
	return out
}

// parseDuration reads an RFC 5545 duration such as PT1H30M, P1D or -P1W.
func parseDuration(value string) (time.Duration, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(v, "-"):
		sign = -1
		v = v[1:]
	case strings.HasPrefix(v, "+"):
		v = v[1:]
	}
	if !strings.HasPrefix(v, "P") || len(v) < 3 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	v = v[1:]

	var total time.Duration
	inTime := false
	num := ""
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
			continue
		case r == 'T':
			inTime = true
			continue
		}

		n, err := strconv.Atoi(num)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		num = ""

		switch {
		case r == 'W' && !inTime:
			total += time.Duration(n) * 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			total += time.Duration(n) * 24 * time.Hour
		case r == 'H' && inTime:
			total += time.Duration(n) * time.Hour
		case r == 'M' && inTime:
			total += time.Duration(n) * time.Minute
		case r == 'S' && inTime:
			total += time.Duration(n) * time.Second
		default:
			return 0, fmt.Errorf("invalid duration %q", value)
		}
	}
	if num != "" {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	return sign * total, nil
}

func param(params map[string][]string, key string) string {
	if vs, ok := params[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// rawText renders the event's own properties back into content lines.
func rawText(ve *ical.VEvent) string {
	var b strings.Builder
	b.WriteString("BEGIN:VEVENT\r\n")
	for _, p := range ve.Properties {
		b.WriteString(p.IANAToken)

		keys := make([]string, 0, len(p.ICalParameters))
		for k := range p.ICalParameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(";" + k + "=" + strings.Join(p.ICalParameters[k], ","))
		}

		b.WriteString(":" + p.Value + "\r\n")
	}
	b.WriteString("END:VEVENT\r\n")
	return b.String()
}
