package calendar

import "time"

// Timestamp is a calendar date or date-time as written in the feed.
type Timestamp struct {
	// Time holds the parsed value. For DateOnly and Floating values only the
	// wall clock fields are meaningful.
	Time time.Time
	// DateOnly marks a VALUE=DATE value without a time of day.
	DateOnly bool
	// Floating marks a date-time without a zone (no TZID, no trailing Z).
	Floating bool
}

// UTC returns the instant the timestamp denotes. Date-only values are anchored
// to midnight UTC and floating values are read as UTC wall clock.
func (t Timestamp) UTC() time.Time {
	v := t.Time
	switch {
	case v.IsZero():
		return time.Time{}
	case t.DateOnly:
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	case t.Floating:
		return time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)
	default:
		return v.UTC()
	}
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// ParsedEvent is one VEVENT as read from a feed, before recurrence expansion.
type ParsedEvent struct {
	UID     string
	Summary string
	Status  string

	Start Timestamp
	End   Timestamp
	// Duration applies when End is unset.
	Duration time.Duration
	AllDay   bool

	RRule   string
	RDates  []Timestamp
	ExDates []Timestamp

	// RecurrenceID is set on overrides of a single recurring instance.
	RecurrenceID *Timestamp

	RawText string
}

// IsOverride reports whether the event replaces one instance of a series.
func (e ParsedEvent) IsOverride() bool {
	return e.RecurrenceID != nil
}

// IsCancelled reports whether the event carries STATUS:CANCELLED.
func (e ParsedEvent) IsCancelled() bool {
	return e.Status == "CANCELLED"
}

// Occurrence is a single concrete occurrence of a feed event with any
// recurrence rule already applied.
type Occurrence struct {
	SourceUID string
	Summary   string
	Start     Timestamp
	End       Timestamp
	AllDay    bool
	RawText   string
}
