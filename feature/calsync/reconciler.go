package calsync

import (
	"context"
	"fmt"

	"calendar-sync/core/reconcile"
	"calendar-sync/feature/calendar"
	"calendar-sync/feature/recordstore"

	"go.uber.org/zap"
)

// Reconciler converges one target dataset to a set of event instances.
type Reconciler struct {
	store  recordstore.Store
	opts   reconcile.ReconcileOptions
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(store recordstore.Store, opts reconcile.ReconcileOptions, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, opts: opts, logger: logger}
}

// Reconcile creates missing records, updates changed ones and archives records
// in the window whose identity is no longer present. The first failing write
// aborts the call; earlier writes stay applied. It returns the plan and the
// number of executed writes; plan.Synced() is the number of instances the
// dataset now holds.
func (r *Reconciler) Reconcile(ctx context.Context, instances []calendar.EventInstance, datasetRef string, w reconcile.Window) (*reconcile.ReconcilePlan, int, error) {
	items := make([]reconcile.SourceItem, len(instances))
	for i, inst := range instances {
		items[i] = inst
	}

	spec := &reconcile.Spec{
		Adapter: newEventAdapter(r.store, datasetRef),
		Window:  w,
	}

	plan, executed, err := reconcile.Reconcile(ctx, spec, items, r.opts)
	if err != nil {
		return plan, executed, fmt.Errorf("failed to reconcile dataset %s: %w", datasetRef, err)
	}

	r.logger.Debug("Dataset reconciled",
		zap.String("dataset", datasetRef),
		zap.Int("creates", plan.Summary.Creates),
		zap.Int("updates", plan.Summary.Updates),
		zap.Int("unchanged", plan.Summary.Unchanged),
		zap.Int("archives", plan.Summary.Archives),
		zap.Int("executed", executed),
		zap.Bool("dry_run", r.opts.DryRun),
	)
	return plan, executed, nil
}
