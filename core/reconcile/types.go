package reconcile

import "time"

// SourceItem represents a desired entity produced by the source of truth.
// Adapters define the concrete type.
type SourceItem any

// TargetItem represents an entity that already exists in the target store.
// Adapters define the concrete type.
type TargetItem any

// Window is the half-open time range [Start, End) a reconciliation covers.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow returns the window [now, now+days).
func NewWindow(now time.Time, days int) Window {
	return Window{Start: now, End: now.AddDate(0, 0, days)}
}

// Overlaps reports whether [start, end] intersects the window.
// A zero end is treated as an instant at start.
func (w Window) Overlaps(start, end time.Time) bool {
	if end.IsZero() || end.Before(start) {
		end = start
	}
	return start.Before(w.End) && !end.Before(w.Start)
}

// ReconcileResult represents the reconciliation output for a single entity.
type ReconcileResult struct {
	// ID is the identity key of the entity.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// SourcePresent indicates whether the entity is in the desired set.
	SourcePresent bool `json:"source_present"`

	// TargetPresent indicates whether the entity exists in the target store.
	TargetPresent bool `json:"target_present"`

	// TargetID is the store reference of the matched target, if any.
	TargetID string `json:"target_id,omitempty"`

	// Mismatch contains descriptions of field differences between source and target.
	// Each string describes one field, e.g., "title: source=Standup target=Stand-up".
	Mismatch []string `json:"mismatch"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate creates a target for a source entity without one.
	ActionCreate ActionType = "create"
	// ActionUpdate rewrites the mutable fields of an existing target.
	ActionUpdate ActionType = "update"
	// ActionArchive archives a target whose source entity disappeared.
	ActionArchive ActionType = "archive"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the entity identity.
	Key string `json:"key"`

	// TargetID is the store reference for update and archive actions.
	TargetID string `json:"target_id,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Source is the desired entity for create and update actions.
	Source SourceItem `json:"-"`

	// Target is the existing entity for update and archive actions.
	Target TargetItem `json:"-"`
}

// ReconcilePlan contains reconciliation results and planned actions.
type ReconcilePlan struct {
	// Window is the range the plan was computed for.
	Window Window `json:"window"`

	// Results contains per-entity reconciliation data.
	Results []ReconcileResult `json:"results"`

	// Actions contains planned mutation operations, creates and updates first.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// Synced returns the number of source entities the plan converges on.
func (p *ReconcilePlan) Synced() int {
	return p.Summary.Creates + p.Summary.Updates + p.Summary.Unchanged
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalItems is the number of distinct source entities.
	TotalItems int `json:"total_items"`

	// Creates counts planned create actions.
	Creates int `json:"creates"`

	// Updates counts planned update actions.
	Updates int `json:"updates"`

	// Unchanged counts matched targets that already agree with the source.
	Unchanged int `json:"unchanged"`

	// Archives counts planned archive actions.
	Archives int `json:"archives"`

	// Duplicates counts source entities collapsed onto an earlier identity.
	Duplicates int `json:"duplicates"`

	// Untracked counts targets in the window without an identity key; they are left alone.
	Untracked int `json:"untracked"`
}

// ReconcileOptions controls reconcile behavior.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// ForceUpdate plans an update for every matched target, even when no field differs.
	ForceUpdate bool
}

// Spec defines the configuration for a reconciliation operation.
type Spec struct {
	// Adapter provides model-specific reconciliation logic.
	Adapter Adapter

	// Window bounds the orphan scan.
	Window Window
}
