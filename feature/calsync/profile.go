package calsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calendar-sync/feature/recordstore"
)

// ErrNoControlDataset is returned when the control dataset cannot be located or read.
var ErrNoControlDataset = errors.New("control dataset unavailable")

// SyncProfile is one row of the control dataset.
type SyncProfile struct {
	ControlRowID     string `json:"control_row_id"`
	Identifier       string `json:"identifier"`
	FeedURL          string `json:"-"`
	Enabled          bool   `json:"enabled"`
	TargetDatasetRef string `json:"target_dataset_ref,omitempty"`
}

// Provisioned reports whether the profile has a target dataset.
func (p SyncProfile) Provisioned() bool {
	return p.TargetDatasetRef != ""
}

// Eligible reports whether the profile is complete and enabled.
func (p SyncProfile) Eligible() bool {
	return p.Identifier != "" && p.FeedURL != "" && p.Enabled
}

// ProfileFromRecord reads a control dataset row.
func ProfileFromRecord(rec recordstore.Record) SyncProfile {
	return SyncProfile{
		ControlRowID:     rec.ID,
		Identifier:       strings.TrimSpace(rec.Text(FieldIdentifier)),
		FeedURL:          strings.TrimSpace(rec.Text(FieldFeedURL)),
		Enabled:          rec.Bool(FieldEnabled),
		TargetDatasetRef: strings.TrimSpace(rec.Text(FieldDatasetRef)),
	}
}

// ResolveProfiles returns the eligible profiles among control rows, in row order.
// Incomplete or disabled rows are dropped without error.
func ResolveProfiles(records []recordstore.Record) []SyncProfile {
	profiles := make([]SyncProfile, 0, len(records))
	for _, rec := range records {
		p := ProfileFromRecord(rec)
		if !p.Eligible() {
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles
}

// Control is the resolved state of the control dataset.
type Control struct {
	// Profiles are the eligible rows.
	Profiles []SyncProfile
	// ExistingRefs counts rows of any state that already carry a dataset
	// reference. Zero means no dataset was ever provisioned.
	ExistingRefs int
}

// LoadControl reads the control dataset.
func LoadControl(ctx context.Context, store recordstore.Store, controlRef string) (*Control, error) {
	records, err := store.QueryAll(ctx, controlRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoControlDataset, err)
	}
	c := &Control{Profiles: ResolveProfiles(records)}
	for _, rec := range records {
		if ProfileFromRecord(rec).Provisioned() {
			c.ExistingRefs++
		}
	}
	return c, nil
}

// LoadProfiles reads and resolves the control dataset.
func LoadProfiles(ctx context.Context, store recordstore.Store, controlRef string) ([]SyncProfile, error) {
	c, err := LoadControl(ctx, store, controlRef)
	if err != nil {
		return nil, err
	}
	return c.Profiles, nil
}

// partition splits profiles into provisioned and pending ones.
func partition(profiles []SyncProfile) (ready, pending []SyncProfile) {
	for _, p := range profiles {
		if p.Provisioned() {
			ready = append(ready, p)
		} else {
			pending = append(pending, p)
		}
	}
	return ready, pending
}
