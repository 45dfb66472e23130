package calendar

import (
	"time"

	"calendar-sync/core/reconcile"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

const defaultMaxOccurrences = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// Window selects the occurrences to produce. Occurrences in progress at
	// Window.Start are included.
	Window reconcile.Window

	// MaxOccurrences caps the occurrences produced per series. Zero means 5000.
	MaxOccurrences int
}

// ExpandResult holds expanded occurrences and the series that hit the cap.
type ExpandResult struct {
	Occurrences []Occurrence
	Truncated   []string
}

// ExpandOccurrences turns parsed events into concrete occurrences overlapping
// the configured window. RRULE and RDATE instances are generated, EXDATEs
// removed, RECURRENCE-ID overrides replace the instance they name and
// cancelled overrides drop it.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig, logger *zap.Logger) ExpandResult {
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}

	var (
		order     []string
		bases     = make(map[string][]ParsedEvent)
		overrides = make(map[string][]ParsedEvent)
	)
	for _, ev := range events {
		if _, seen := bases[ev.UID]; !seen {
			if _, seen := overrides[ev.UID]; !seen {
				order = append(order, ev.UID)
			}
		}
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		} else {
			bases[ev.UID] = append(bases[ev.UID], ev)
		}
	}

	var result ExpandResult
	for _, uid := range order {
		used := make(map[int]bool)
		truncated := false

		for _, base := range bases[uid] {
			occs, hitCap := expandSeries(base, overrides[uid], used, cfg, logger)
			result.Occurrences = append(result.Occurrences, occs...)
			truncated = truncated || hitCap
		}

		// Overrides whose original slot fell outside the window may still have
		// been moved into it.
		for i, ov := range overrides[uid] {
			if used[i] || ov.IsCancelled() {
				continue
			}
			start := ov.Start.UTC()
			if cfg.Window.Overlaps(start, eventEnd(ov, ov.Start).UTC()) && !slotExcluded(bases[uid], *ov.RecurrenceID) {
				result.Occurrences = append(result.Occurrences, occurrenceOf(ov, ov.Start))
			}
		}

		if truncated {
			result.Truncated = append(result.Truncated, uid)
			logger.Warn("Series truncated at occurrence cap",
				zap.String("uid", uid),
				zap.Int("cap", cfg.MaxOccurrences),
			)
		}
	}

	return result
}

// expandSeries expands one base event. used marks overrides consumed by a generated slot.
func expandSeries(base ParsedEvent, overrides []ParsedEvent, used map[int]bool, cfg ExpandConfig, logger *zap.Logger) ([]Occurrence, bool) {
	if base.IsCancelled() {
		return nil, false
	}

	duration := eventEnd(base, base.Start).Time.Sub(base.Start.Time)
	starts, err := seriesStarts(base, duration, cfg.Window)
	if err != nil {
		logger.Warn("Failed to expand recurrence rule",
			zap.String("uid", base.UID),
			zap.String("rrule", base.RRule),
			zap.Error(err),
		)
		return nil, false
	}

	hitCap := false
	if len(starts) > cfg.MaxOccurrences {
		starts = starts[:cfg.MaxOccurrences]
		hitCap = true
	}

	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		slot := Timestamp{Time: start, DateOnly: base.Start.DateOnly, Floating: base.Start.Floating}

		if i, ov, ok := findOverride(overrides, slot); ok {
			used[i] = true
			if ov.IsCancelled() {
				continue
			}
			if cfg.Window.Overlaps(ov.Start.UTC(), eventEnd(ov, ov.Start).UTC()) {
				out = append(out, occurrenceOf(ov, ov.Start))
			}
			continue
		}

		occ := occurrenceOf(base, slot)
		if cfg.Window.Overlaps(occ.Start.UTC(), occ.End.UTC()) {
			out = append(out, occ)
		}
	}

	return out, hitCap
}

// seriesStarts lists the start times of a series that may overlap the window.
func seriesStarts(base ParsedEvent, duration time.Duration, w reconcile.Window) ([]time.Time, error) {
	// Date-only and floating values carry UTC, so their wall clock is compared as UTC.
	loc := base.Start.Time.Location()
	// Widen by the duration so occurrences in progress at the window start are found.
	after := w.Start.Add(-duration).In(loc)
	before := w.End.In(loc)

	if base.RRule == "" {
		var set []time.Time
		for _, t := range append([]Timestamp{base.Start}, base.RDates...) {
			if excluded(base.ExDates, t.Time) {
				continue
			}
			if !t.Time.Before(after) && !t.Time.After(before) {
				set = append(set, t.Time)
			}
		}
		return set, nil
	}

	r, err := rrule.StrToRRule(base.RRule)
	if err != nil {
		return nil, err
	}
	r.DTStart(base.Start.Time)

	set := rrule.Set{}
	set.RRule(r)
	for _, rd := range base.RDates {
		set.RDate(rd.Time.In(loc))
	}
	for _, ex := range base.ExDates {
		set.ExDate(ex.Time.In(loc))
	}

	return set.Between(after, before, true), nil
}

// eventEnd resolves the end of an event starting at start, using DTEND,
// DURATION or the one-day default for date-only events.
func eventEnd(ev ParsedEvent, start Timestamp) Timestamp {
	if !ev.End.IsZero() {
		if start.Time.Equal(ev.Start.Time) {
			return ev.End
		}
		d := ev.End.Time.Sub(ev.Start.Time)
		return Timestamp{Time: start.Time.Add(d), DateOnly: ev.End.DateOnly, Floating: ev.End.Floating}
	}
	return Timestamp{Time: start.Time.Add(ev.Duration), DateOnly: start.DateOnly, Floating: start.Floating}
}

func occurrenceOf(ev ParsedEvent, start Timestamp) Occurrence {
	return Occurrence{
		SourceUID: ev.UID,
		Summary:   ev.Summary,
		Start:     start,
		End:       eventEnd(ev, start),
		AllDay:    ev.AllDay,
		RawText:   ev.RawText,
	}
}

func findOverride(overrides []ParsedEvent, slot Timestamp) (int, ParsedEvent, bool) {
	for i, ov := range overrides {
		if ov.RecurrenceID.UTC().Equal(slot.UTC()) {
			return i, ov, true
		}
	}
	return -1, ParsedEvent{}, false
}

// slotExcluded reports whether an override's original slot was removed by EXDATE.
func slotExcluded(bases []ParsedEvent, rid Timestamp) bool {
	for _, b := range bases {
		for _, ex := range b.ExDates {
			if ex.UTC().Equal(rid.UTC()) {
				return true
			}
		}
	}
	return false
}

func excluded(exdates []Timestamp, t time.Time) bool {
	for _, ex := range exdates {
		if ex.Time.Equal(t) {
			return true
		}
	}
	return false
}
