package calsync

import (
	"context"
	"errors"
	"fmt"

	"calendar-sync/feature/recordstore"

	"go.uber.org/zap"
)

const controlInstructions = "Add one row per calendar to the driver database: a name, the ICS feed URL " +
	"and the Sync_Enabled checkbox. A dedicated database is created for every enabled row on the next sync."

// Locations are the resolved parent and control dataset references.
type Locations struct {
	ParentRef      string `json:"parent_ref"`
	ControlRef     string `json:"control_ref"`
	CreatedControl bool   `json:"created_control"`
}

// Bootstrapper locates the parent location and the control dataset, creating
// the control dataset when it does not exist yet.
type Bootstrapper struct {
	store   recordstore.Store
	locator recordstore.Locator
	cfg     recordstore.Config
	logger  *zap.Logger
}

// NewBootstrapper creates a bootstrapper. locator may be nil when both
// references are configured.
func NewBootstrapper(store recordstore.Store, locator recordstore.Locator, cfg recordstore.Config, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{store: store, locator: locator, cfg: cfg, logger: logger}
}

// Ensure resolves both locations.
func (b *Bootstrapper) Ensure(ctx context.Context) (Locations, error) {
	loc := Locations{ParentRef: b.cfg.ParentRef, ControlRef: b.cfg.ControlRef}
	if loc.ParentRef != "" && loc.ControlRef != "" {
		return loc, nil
	}
	if b.locator == nil {
		return loc, fmt.Errorf("%w: store cannot look up locations, set store.parent_ref and store.control_ref", ErrNoControlDataset)
	}

	if loc.ParentRef == "" {
		ref, err := b.locator.FindParent(ctx, b.cfg.ParentName)
		if errors.Is(err, recordstore.ErrNotFound) {
			return loc, fmt.Errorf("%w: parent %q not found, create it and share it with the integration", ErrNoControlDataset, b.cfg.ParentName)
		}
		if err != nil {
			return loc, fmt.Errorf("%w: failed to look up parent %q: %w", ErrNoControlDataset, b.cfg.ParentName, err)
		}
		loc.ParentRef = ref
	}

	if loc.ControlRef != "" {
		return loc, nil
	}

	ref, err := b.locator.FindDataset(ctx, b.cfg.ControlName)
	switch {
	case err == nil:
		loc.ControlRef = ref
		return loc, nil
	case !errors.Is(err, recordstore.ErrNotFound):
		return loc, fmt.Errorf("%w: failed to look up %q: %w", ErrNoControlDataset, b.cfg.ControlName, err)
	}

	ref, err = b.store.CreateDataset(ctx, loc.ParentRef, b.cfg.ControlName, ControlSchema())
	if err != nil {
		return loc, fmt.Errorf("%w: failed to create %q: %w", ErrNoControlDataset, b.cfg.ControlName, err)
	}
	loc.ControlRef = ref
	loc.CreatedControl = true
	b.logger.Info("Control dataset created", zap.String("dataset", ref), zap.String("title", b.cfg.ControlName))

	if err := b.locator.AppendParagraph(ctx, loc.ParentRef, controlInstructions); err != nil {
		b.logger.Warn("Failed to add instructions to parent", zap.Error(err))
	}

	return loc, nil
}
