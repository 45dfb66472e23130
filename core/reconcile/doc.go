// Package reconcile provides a generic engine that converges a target store onto
// a desired set of source entities.
//
// # Architecture
//
// The reconcile system consists of two parts:
//
// 1. Engine: indexes the source items by identity key (first item wins), looks
// each key up in the target, and scans the target for entities inside the sync
// window whose key is no longer desired.
//
// 2. Adapter: model-specific logic that knows how to extract keys, query the
// target store, compare fields and (through Mutator) write changes.
//
// # Plan and Apply
//
// ReconcileWithPlan never writes. It produces a ReconcilePlan with per-entity
// results, ordered actions (creates and updates first, archives last) and a
// summary. ApplyPlan executes the actions and aborts on the first failure;
// there is no rollback, the next run converges from whatever state remains.
//
// # Usage Example
//
//	spec := &reconcile.Spec{
//	    Adapter: adapter,
//	    Window:  reconcile.NewWindow(now, 14),
//	}
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, items, opts)
//	executed, err := reconcile.ApplyPlan(ctx, spec, plan, opts)
package reconcile
