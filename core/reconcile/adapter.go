package reconcile

import "context"

// Adapter defines the interface for model-specific reconciliation logic.
// An adapter is bound to one target collection and knows how to look up,
// list and compare the entities stored there.
type Adapter interface {
	// Name returns a short name of this adapter used in logs and errors.
	Name() string

	// ExtractSourceKey returns the identity key of a source item.
	ExtractSourceKey(item SourceItem) string

	// ExtractTargetKey returns the identity key stored on a target item.
	// An empty key marks a target the engine does not manage.
	ExtractTargetKey(item TargetItem) string

	// ExtractTargetID returns the store reference of a target item.
	ExtractTargetID(item TargetItem) string

	// ResolveName returns the display name for an entity.
	// Either item may be nil if not present on that side.
	ResolveName(src SourceItem, tgt TargetItem) string

	// LookupTarget finds the target carrying the given identity key.
	// When several targets match, the first one is returned.
	// The boolean is false when no target exists.
	LookupTarget(ctx context.Context, key string) (TargetItem, bool, error)

	// LoadWindow lists all live targets whose date range may overlap the window.
	// Implementations may over-fetch; the engine re-checks with InWindow.
	LoadWindow(ctx context.Context, w Window) ([]TargetItem, error)

	// InWindow reports whether a target's date range overlaps the window.
	InWindow(item TargetItem, w Window) bool

	// CompareFields compares the mutable fields of a source and its target and
	// returns one description per differing field.
	// Both items are guaranteed to be non-nil when this is called.
	CompareFields(src SourceItem, tgt TargetItem) []string
}

// Mutator defines the write operations ApplyPlan needs from an adapter.
type Mutator interface {
	// Create stores a new target for the source item.
	Create(ctx context.Context, key string, src SourceItem) error

	// Update rewrites the mutable fields of an existing target. The identity
	// key of the target is never changed.
	Update(ctx context.Context, tgt TargetItem, src SourceItem) error

	// Archive soft-deletes a target.
	Archive(ctx context.Context, tgt TargetItem) error
}
