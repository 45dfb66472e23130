package calendar

import (
	"iter"

	"calendar-sync/core/reconcile"

	"go.uber.org/zap"
)

// Policy selects which occurrences are actionable.
type Policy struct {
	// IncludeAllDay keeps occurrences flagged all-day by the feed
	// (X-MICROSOFT-CDO-ALLDAYEVENT). They are dropped by default. Date-only
	// events are not affected.
	IncludeAllDay bool
}

// Expander produces the occurrences of a feed that matter for one sync window.
type Expander struct {
	policy         Policy
	maxOccurrences int
	logger         *zap.Logger
}

// NewExpander creates a window expander.
func NewExpander(policy Policy, maxOccurrences int, logger *zap.Logger) *Expander {
	return &Expander{policy: policy, maxOccurrences: maxOccurrences, logger: logger}
}

// Occurrences yields the occurrences of events overlapping w, minus those that
// ended before w.Start and, unless the policy keeps them, all-day ones.
// The sequence holds no state: every range over it expands the events again.
func (e *Expander) Occurrences(events []ParsedEvent, w reconcile.Window) iter.Seq[Occurrence] {
	return func(yield func(Occurrence) bool) {
		res := ExpandOccurrences(events, ExpandConfig{Window: w, MaxOccurrences: e.maxOccurrences}, e.logger)
		for _, occ := range res.Occurrences {
			if !e.keep(occ, w) {
				continue
			}
			if !yield(occ) {
				return
			}
		}
	}
}

// Instances yields the normalized instances of Occurrences.
func (e *Expander) Instances(events []ParsedEvent, w reconcile.Window) iter.Seq[EventInstance] {
	return func(yield func(EventInstance) bool) {
		for occ := range e.Occurrences(events, w) {
			if !yield(NewInstance(occ)) {
				return
			}
		}
	}
}

func (e *Expander) keep(occ Occurrence, w reconcile.Window) bool {
	end := occ.End.UTC()
	if end.IsZero() {
		end = occ.Start.UTC()
	}
	if end.Before(w.Start) {
		return false
	}
	if occ.AllDay && !e.policy.IncludeAllDay {
		return false
	}
	return true
}
