package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type srcItem struct {
	key   string
	value string
}

type tgtItem struct {
	id    string
	key   string
	value string
	start time.Time
}

// mockAdapter is an in-memory test adapter that records mutations.
type mockAdapter struct {
	targets   map[string]*tgtItem // by id
	nextID    int
	lookupErr error
	windowErr error
	failOn    map[ActionType]string // action type -> key that fails
	calls     []string
}

func newMockAdapter(targets ...*tgtItem) *mockAdapter {
	m := &mockAdapter{targets: make(map[string]*tgtItem), failOn: map[ActionType]string{}}
	for _, t := range targets {
		m.targets[t.id] = t
	}
	return m
}

func (m *mockAdapter) Name() string { return "mock" }

func (m *mockAdapter) ExtractSourceKey(item SourceItem) string { return item.(srcItem).key }

func (m *mockAdapter) ExtractTargetKey(item TargetItem) string { return item.(*tgtItem).key }

func (m *mockAdapter) ExtractTargetID(item TargetItem) string { return item.(*tgtItem).id }

func (m *mockAdapter) ResolveName(src SourceItem, tgt TargetItem) string {
	if src != nil {
		return src.(srcItem).value
	}
	if tgt != nil {
		return tgt.(*tgtItem).value
	}
	return ""
}

func (m *mockAdapter) LookupTarget(ctx context.Context, key string) (TargetItem, bool, error) {
	if m.lookupErr != nil {
		return nil, false, m.lookupErr
	}
	for _, t := range m.targets {
		if t.key == key {
			return t, true, nil
		}
	}
	return nil, false, nil
}

func (m *mockAdapter) LoadWindow(ctx context.Context, w Window) ([]TargetItem, error) {
	if m.windowErr != nil {
		return nil, m.windowErr
	}
	out := make([]TargetItem, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockAdapter) InWindow(item TargetItem, w Window) bool {
	t := item.(*tgtItem)
	return w.Overlaps(t.start, t.start)
}

func (m *mockAdapter) CompareFields(src SourceItem, tgt TargetItem) []string {
	s, t := src.(srcItem), tgt.(*tgtItem)
	if s.value != t.value {
		return []string{fmt.Sprintf("value: source=%s target=%s", s.value, t.value)}
	}
	return nil
}

func (m *mockAdapter) Create(ctx context.Context, key string, src SourceItem) error {
	m.calls = append(m.calls, "create:"+key)
	if m.failOn[ActionCreate] == key {
		return fmt.Errorf("create failed")
	}
	m.nextID++
	id := fmt.Sprintf("new-%d", m.nextID)
	m.targets[id] = &tgtItem{id: id, key: key, value: src.(srcItem).value, start: windowStart}
	return nil
}

func (m *mockAdapter) Update(ctx context.Context, tgt TargetItem, src SourceItem) error {
	t := tgt.(*tgtItem)
	m.calls = append(m.calls, "update:"+t.key)
	if m.failOn[ActionUpdate] == t.key {
		return fmt.Errorf("update failed")
	}
	t.value = src.(srcItem).value
	return nil
}

func (m *mockAdapter) Archive(ctx context.Context, tgt TargetItem) error {
	t := tgt.(*tgtItem)
	m.calls = append(m.calls, "archive:"+t.key)
	if m.failOn[ActionArchive] == t.key {
		return fmt.Errorf("archive failed")
	}
	delete(m.targets, t.id)
	return nil
}

var windowStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testSpec(adapter Adapter) *Spec {
	return &Spec{Adapter: adapter, Window: NewWindow(windowStart, 14)}
}

func sources(items ...srcItem) []SourceItem {
	out := make([]SourceItem, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func TestWindow_Overlaps(t *testing.T) {
	w := NewWindow(windowStart, 14)
	day := 24 * time.Hour

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", windowStart.Add(day), windowStart.Add(day + time.Hour), true},
		{"at start", windowStart, time.Time{}, true},
		{"in progress at start", windowStart.Add(-time.Hour), windowStart.Add(time.Hour), true},
		{"ended before start", windowStart.Add(-2 * time.Hour), windowStart.Add(-time.Hour), false},
		{"at end is excluded", w.End, w.End.Add(time.Hour), false},
		{"after end", w.End.Add(day), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Overlaps(tt.start, tt.end))
		})
	}
}

func TestIndexSources_FirstWins(t *testing.T) {
	adapter := newMockAdapter()
	index, order, dups := IndexSources(sources(
		srcItem{key: "a", value: "first"},
		srcItem{key: "b", value: "b"},
		srcItem{key: "a", value: "second"},
	), adapter)

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, dups)
	assert.Equal(t, "first", index["a"].(srcItem).value)
}

func TestReconcile_CreatesThenConverges(t *testing.T) {
	adapter := newMockAdapter()
	spec := testSpec(adapter)
	items := sources(srcItem{key: "a", value: "A"}, srcItem{key: "b", value: "B"})

	plan, executed, err := Reconcile(context.Background(), spec, items, ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, executed)
	assert.Equal(t, 2, plan.Summary.Creates)
	assert.Equal(t, 2, plan.Synced())
	assert.Len(t, adapter.targets, 2)

	// Second run with the same input is a no-op.
	plan, executed, err = Reconcile(context.Background(), spec, items, ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, executed)
	assert.Equal(t, 0, plan.Summary.Creates)
	assert.Equal(t, 2, plan.Summary.Unchanged)
	assert.Equal(t, 0, plan.Summary.Archives)
	assert.Equal(t, 2, plan.Synced())
	assert.Len(t, adapter.targets, 2)
}

func TestReconcile_ForceUpdate(t *testing.T) {
	adapter := newMockAdapter(&tgtItem{id: "1", key: "a", value: "A", start: windowStart})
	spec := testSpec(adapter)

	plan, executed, err := Reconcile(context.Background(), spec, sources(srcItem{key: "a", value: "A"}), ReconcileOptions{ForceUpdate: true})
	require.NoError(t, err)
	assert.Equal(t, 1, executed)
	assert.Equal(t, 1, plan.Summary.Updates)
	assert.Equal(t, "forced update", plan.Actions[0].Reason)
}

func TestApplyPlan_DryRun(t *testing.T) {
	adapter := newMockAdapter()
	spec := testSpec(adapter)
	opts := ReconcileOptions{DryRun: true}

	plan, executed, err := Reconcile(context.Background(), spec, sources(srcItem{key: "a"}), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, executed)
	assert.Len(t, plan.Actions, 1)
	assert.Empty(t, adapter.calls)
	assert.Empty(t, adapter.targets)
}

func TestApplyPlan_AbortsOnFirstFailure(t *testing.T) {
	tests := []struct {
		name         string
		failType     ActionType
		failKey      string
		wantExecuted int
		wantErr      string
	}{
		{"create failure", ActionCreate, "b", 1, "failed to create b"},
		{"update failure", ActionUpdate, "u", 2, "failed to update u"},
		{"archive failure", ActionArchive, "gone", 3, "failed to archive gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newMockAdapter(
				&tgtItem{id: "1", key: "u", value: "old", start: windowStart},
				&tgtItem{id: "2", key: "gone", value: "x", start: windowStart},
			)
			adapter.failOn[tt.failType] = tt.failKey
			spec := testSpec(adapter)
			items := sources(srcItem{key: "a"}, srcItem{key: "b"}, srcItem{key: "u", value: "new"})

			_, executed, err := Reconcile(context.Background(), spec, items, ReconcileOptions{})
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantExecuted, executed)
		})
	}
}

func TestApplyPlan_RequiresMutator(t *testing.T) {
	spec := &Spec{Adapter: readOnlyAdapter{newMockAdapter()}}
	plan := &ReconcilePlan{Actions: []Action{{Type: ActionCreate, Key: "a"}}}

	_, err := ApplyPlan(context.Background(), spec, plan, ReconcileOptions{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not implement Mutator")
}

// readOnlyAdapter hides the mutation methods of the embedded adapter.
type readOnlyAdapter struct {
	inner *mockAdapter
}

func (r readOnlyAdapter) Name() string { return r.inner.Name() }
func (r readOnlyAdapter) ExtractSourceKey(item SourceItem) string { return r.inner.ExtractSourceKey(item) }
func (r readOnlyAdapter) ExtractTargetKey(item TargetItem) string { return r.inner.ExtractTargetKey(item) }
func (r readOnlyAdapter) ExtractTargetID(item TargetItem) string { return r.inner.ExtractTargetID(item) }
func (r readOnlyAdapter) ResolveName(s SourceItem, t TargetItem) string { return r.inner.ResolveName(s, t) }
func (r readOnlyAdapter) LookupTarget(ctx context.Context, key string) (TargetItem, bool, error) {
	return r.inner.LookupTarget(ctx, key)
}
func (r readOnlyAdapter) LoadWindow(ctx context.Context, w Window) ([]TargetItem, error) {
	return r.inner.LoadWindow(ctx, w)
}
func (r readOnlyAdapter) InWindow(item TargetItem, w Window) bool { return r.inner.InWindow(item, w) }
func (r readOnlyAdapter) CompareFields(s SourceItem, t TargetItem) []string {
	return r.inner.CompareFields(s, t)
}
