package reconcile

import (
	"context"
	"fmt"
	"sort"
)

// IndexSources indexes source items by identity key, keeping the first item for
// each key. It returns the index, the keys in first-seen order and the number
// of items collapsed onto an existing key.
func IndexSources(items []SourceItem, adapter Adapter) (map[string]SourceItem, []string, int) {
	index := make(map[string]SourceItem, len(items))
	order := make([]string, 0, len(items))
	duplicates := 0

	for _, item := range items {
		key := adapter.ExtractSourceKey(item)
		if _, exists := index[key]; exists {
			duplicates++
			continue
		}
		index[key] = item
		order = append(order, key)
	}

	return index, order, duplicates
}

// ReconcileWithPlan compares the desired source items with the target store
// and returns a plan of create, update and archive actions.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(ctx context.Context, spec *Spec, items []SourceItem, opts ReconcileOptions) (*ReconcilePlan, error) {
	adapter := spec.Adapter
	index, order, duplicates := IndexSources(items, adapter)

	plan := &ReconcilePlan{
		Window:  spec.Window,
		Results: make([]ReconcileResult, 0, len(order)),
		Actions: make([]Action, 0),
		Summary: PlanSummary{
			TotalItems: len(order),
			Duplicates: duplicates,
		},
	}

	// Pass 1: match every source against the store.
	for _, key := range order {
		src := index[key]

		tgt, found, err := adapter.LookupTarget(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s target %s: %w", adapter.Name(), key, err)
		}

		result := ReconcileResult{
			ID:            key,
			SourcePresent: true,
			TargetPresent: found,
			Mismatch:      []string{},
		}

		if !found {
			result.Name = adapter.ResolveName(src, nil)
			plan.Results = append(plan.Results, result)
			plan.Actions = append(plan.Actions, Action{
				Type:   ActionCreate,
				Key:    key,
				Reason: "missing in target",
				Source: src,
			})
			plan.Summary.Creates++
			continue
		}

		result.Name = adapter.ResolveName(src, tgt)
		result.TargetID = adapter.ExtractTargetID(tgt)
		result.Mismatch = adapter.CompareFields(src, tgt)
		plan.Results = append(plan.Results, result)

		if len(result.Mismatch) == 0 && !opts.ForceUpdate {
			plan.Summary.Unchanged++
			continue
		}

		reason := "forced update"
		if len(result.Mismatch) > 0 {
			reason = fmt.Sprintf("%d field(s) differ", len(result.Mismatch))
		}
		plan.Actions = append(plan.Actions, Action{
			Type:     ActionUpdate,
			Key:      key,
			TargetID: result.TargetID,
			Reason:   reason,
			Source:   src,
			Target:   tgt,
		})
		plan.Summary.Updates++
	}

	// Pass 2: archive targets in the window whose identity is no longer desired.
	targets, err := adapter.LoadWindow(ctx, spec.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s targets in window: %w", adapter.Name(), err)
	}

	seen := make(map[string]struct{}, len(targets))
	for _, tgt := range targets {
		if !adapter.InWindow(tgt, spec.Window) {
			continue
		}

		id := adapter.ExtractTargetID(tgt)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		key := adapter.ExtractTargetKey(tgt)
		if key == "" {
			plan.Summary.Untracked++
			continue
		}
		if _, synced := index[key]; synced {
			continue
		}

		plan.Results = append(plan.Results, ReconcileResult{
			ID:            key,
			Name:          adapter.ResolveName(nil, tgt),
			TargetPresent: true,
			TargetID:      id,
			Mismatch:      []string{},
		})
		plan.Actions = append(plan.Actions, Action{
			Type:     ActionArchive,
			Key:      key,
			TargetID: id,
			Reason:   "no longer in source",
			Target:   tgt,
		})
		plan.Summary.Archives++
	}

	// Sort results by key for deterministic output
	sort.SliceStable(plan.Results, func(i, j int) bool {
		return plan.Results[i].ID < plan.Results[j].ID
	})

	return plan, nil
}

// ApplyPlan executes the actions in a reconcile plan in order.
// The first failing action aborts the run; actions already executed stay applied.
// Returns the number of actions executed and any error encountered.
func ApplyPlan(ctx context.Context, spec *Spec, plan *ReconcilePlan, opts ReconcileOptions) (executed int, err error) {
	if opts.DryRun {
		return 0, nil
	}

	mutator, ok := spec.Adapter.(Mutator)
	if !ok {
		return 0, fmt.Errorf("adapter %s does not implement Mutator interface", spec.Adapter.Name())
	}

	for _, action := range plan.Actions {
		switch action.Type {
		case ActionCreate:
			err = mutator.Create(ctx, action.Key, action.Source)
		case ActionUpdate:
			err = mutator.Update(ctx, action.Target, action.Source)
		case ActionArchive:
			err = mutator.Archive(ctx, action.Target)
		default:
			err = fmt.Errorf("unknown action type %q", action.Type)
		}
		if err != nil {
			return executed, fmt.Errorf("failed to %s %s: %w", action.Type, action.Key, err)
		}
		executed++
	}

	return executed, nil
}

// Reconcile plans and applies in one call.
func Reconcile(ctx context.Context, spec *Spec, items []SourceItem, opts ReconcileOptions) (*ReconcilePlan, int, error) {
	plan, err := ReconcileWithPlan(ctx, spec, items, opts)
	if err != nil {
		return nil, 0, err
	}
	executed, err := ApplyPlan(ctx, spec, plan, opts)
	return plan, executed, err
}
