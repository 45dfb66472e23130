package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReconcileWithPlan_Actions tests that create, update and archive actions are planned correctly.
func TestReconcileWithPlan_Actions(t *testing.T) {
	w := NewWindow(windowStart, 14)
	adapter := newMockAdapter(
		&tgtItem{id: "t1", key: "same", value: "v", start: windowStart},
		&tgtItem{id: "t2", key: "changed", value: "old", start: windowStart},
		&tgtItem{id: "t3", key: "orphan", value: "o", start: windowStart.AddDate(0, 0, 3)},
		&tgtItem{id: "t4", key: "outside", value: "x", start: w.End.AddDate(0, 0, 1)},
		&tgtItem{id: "t5", key: "", value: "manual", start: windowStart},
	)
	spec := testSpec(adapter)

	items := sources(
		srcItem{key: "same", value: "v"},
		srcItem{key: "changed", value: "new"},
		srcItem{key: "fresh", value: "f"},
	)

	plan, err := ReconcileWithPlan(context.Background(), spec, items, ReconcileOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Summary.TotalItems)
	assert.Equal(t, 1, plan.Summary.Creates)
	assert.Equal(t, 1, plan.Summary.Updates)
	assert.Equal(t, 1, plan.Summary.Unchanged)
	assert.Equal(t, 1, plan.Summary.Archives)
	assert.Equal(t, 1, plan.Summary.Untracked)
	assert.Equal(t, 3, plan.Synced())

	byKey := make(map[string]Action)
	for _, a := range plan.Actions {
		byKey[a.Key] = a
	}
	assert.Equal(t, ActionCreate, byKey["fresh"].Type)
	assert.Equal(t, ActionUpdate, byKey["changed"].Type)
	assert.Equal(t, "t2", byKey["changed"].TargetID)
	assert.Equal(t, ActionArchive, byKey["orphan"].Type)
	assert.Equal(t, "t3", byKey["orphan"].TargetID)
	assert.NotContains(t, byKey, "outside")
	assert.NotContains(t, byKey, "same")

	// Archives are planned after creates and updates.
	assert.Equal(t, ActionArchive, plan.Actions[len(plan.Actions)-1].Type)

	// Results are sorted by key.
	for i := 1; i < len(plan.Results); i++ {
		assert.LessOrEqual(t, plan.Results[i-1].ID, plan.Results[i].ID)
	}

	// Planning never writes.
	assert.Empty(t, adapter.calls)
}

func TestReconcileWithPlan_DuplicateSources(t *testing.T) {
	adapter := newMockAdapter()
	plan, err := ReconcileWithPlan(context.Background(), testSpec(adapter), sources(
		srcItem{key: "a", value: "1"},
		srcItem{key: "a", value: "2"},
	), ReconcileOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Summary.TotalItems)
	assert.Equal(t, 1, plan.Summary.Duplicates)
	assert.Equal(t, 1, plan.Summary.Creates)
}

func TestReconcileWithPlan_Errors(t *testing.T) {
	t.Run("lookup error", func(t *testing.T) {
		adapter := newMockAdapter()
		adapter.lookupErr = errors.New("lookup boom")

		_, err := ReconcileWithPlan(context.Background(), testSpec(adapter), sources(srcItem{key: "a"}), ReconcileOptions{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "lookup boom")
	})

	t.Run("window error", func(t *testing.T) {
		adapter := newMockAdapter()
		adapter.windowErr = errors.New("window boom")

		_, err := ReconcileWithPlan(context.Background(), testSpec(adapter), nil, ReconcileOptions{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "window boom")
	})
}

func TestReconcileWithPlan_EmptySourceArchivesWindow(t *testing.T) {
	adapter := newMockAdapter(
		&tgtItem{id: "t1", key: "a", start: windowStart},
		&tgtItem{id: "t2", key: "b", start: windowStart.AddDate(0, 0, 1)},
	)

	plan, err := ReconcileWithPlan(context.Background(), testSpec(adapter), nil, ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Summary.Archives)
	assert.Equal(t, 0, plan.Synced())
}
