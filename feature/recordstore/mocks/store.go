package mocks

import (
	"context"
	"time"

	"calendar-sync/feature/recordstore"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of recordstore.Store and recordstore.Locator.
type Store struct {
	mock.Mock
}

func (m *Store) CreateDataset(ctx context.Context, parentRef, title string, schema []recordstore.Field) (string, error) {
	args := m.Called(ctx, parentRef, title, schema)
	return args.String(0), args.Error(1)
}

func (m *Store) UpdateDatasetSchema(ctx context.Context, datasetRef string, fields []recordstore.Field) error {
	args := m.Called(ctx, datasetRef, fields)
	return args.Error(0)
}

func (m *Store) CreateRecord(ctx context.Context, datasetRef string, props recordstore.Properties) (string, error) {
	args := m.Called(ctx, datasetRef, props)
	return args.String(0), args.Error(1)
}

func (m *Store) UpdateRecord(ctx context.Context, datasetRef, recordID string, props recordstore.Properties) error {
	args := m.Called(ctx, datasetRef, recordID, props)
	return args.Error(0)
}

func (m *Store) QueryByField(ctx context.Context, datasetRef, field, value string) ([]recordstore.Record, error) {
	args := m.Called(ctx, datasetRef, field, value)
	if recs, ok := args.Get(0).([]recordstore.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) QueryByDateRange(ctx context.Context, datasetRef, field string, start, end time.Time) ([]recordstore.Record, error) {
	args := m.Called(ctx, datasetRef, field, start, end)
	if recs, ok := args.Get(0).([]recordstore.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) QueryAll(ctx context.Context, datasetRef string) ([]recordstore.Record, error) {
	args := m.Called(ctx, datasetRef)
	if recs, ok := args.Get(0).([]recordstore.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) ArchiveRecord(ctx context.Context, datasetRef, recordID string) error {
	args := m.Called(ctx, datasetRef, recordID)
	return args.Error(0)
}

func (m *Store) FindParent(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *Store) FindDataset(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

func (m *Store) AppendParagraph(ctx context.Context, parentRef, text string) error {
	args := m.Called(ctx, parentRef, text)
	return args.Error(0)
}
