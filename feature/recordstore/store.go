package recordstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a dataset, record or location does not exist.
var ErrNotFound = errors.New("not found")

// Store is the record store API. Every call is a remote, independently
// failable operation; nothing spans more than one record.
type Store interface {
	// CreateDataset creates a dataset titled title under parentRef and returns its reference.
	CreateDataset(ctx context.Context, parentRef, title string, schema []Field) (string, error)
	// UpdateDatasetSchema adds the given fields to a dataset. Existing fields are kept.
	UpdateDatasetSchema(ctx context.Context, datasetRef string, fields []Field) error
	// CreateRecord inserts a record and returns its ID.
	CreateRecord(ctx context.Context, datasetRef string, props Properties) (string, error)
	// UpdateRecord overwrites the given properties of a record.
	UpdateRecord(ctx context.Context, datasetRef, recordID string, props Properties) error
	// QueryByField returns the live records whose text field equals value.
	QueryByField(ctx context.Context, datasetRef, field, value string) ([]Record, error)
	// QueryByDateRange returns live records whose date field may overlap [start, end).
	// Backends may over-select; callers re-check overlap.
	QueryByDateRange(ctx context.Context, datasetRef, field string, start, end time.Time) ([]Record, error)
	// QueryAll returns every live record of a dataset.
	QueryAll(ctx context.Context, datasetRef string) ([]Record, error)
	// ArchiveRecord soft-deletes a record.
	ArchiveRecord(ctx context.Context, datasetRef, recordID string) error
}

// Locator finds datasets and locations by name. Backends that support
// discovery implement it next to Store.
type Locator interface {
	// FindParent returns the reference of the location titled name, or ErrNotFound.
	FindParent(ctx context.Context, name string) (string, error)
	// FindDataset returns the reference of the dataset titled title, or ErrNotFound.
	FindDataset(ctx context.Context, title string) (string, error)
	// AppendParagraph adds a text note to a location.
	AppendParagraph(ctx context.Context, parentRef, text string) error
}
