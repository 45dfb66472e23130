package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calendar-sync/core/database"
	"calendar-sync/feature/recordstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store implements recordstore.Store and recordstore.Locator on a SQL database.
// Every dataset is a table named ds_<uuid> with an id and archived column
// plus one column per field; date fields use <column>_start and <column>_end.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a SQL record store.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates the dataset registry and notes tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&datasetRow{}, &noteRow{}); err != nil {
		return fmt.Errorf("failed to migrate record store: %w", err)
	}
	return nil
}

// CreateDataset creates the dataset table and registers it.
func (s *Store) CreateDataset(ctx context.Context, parentRef, title string, schema []recordstore.Field) (string, error) {
	id := uuid.NewString()
	row := datasetRow{
		ID:        id,
		ParentRef: parentRef,
		Title:     title,
		Table:     "ds_" + strings.ReplaceAll(id, "-", ""),
		Schema:    schema,
		CreatedAt: time.Now().UTC(),
	}

	defs := []string{"id VARCHAR(36) NOT NULL PRIMARY KEY", "archived BOOLEAN NOT NULL DEFAULT 0"}
	for _, f := range schema {
		defs = append(defs, columnDefs(f)...)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", row.Table, strings.Join(defs, ", "))
	if err := s.db.WithContext(ctx).Exec(ddl).Error; err != nil {
		return "", fmt.Errorf("failed to create table for dataset %q: %w", title, err)
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("failed to register dataset %q: %w", title, err)
	}

	s.logger.Debug("Dataset created", zap.String("dataset", id), zap.String("table", row.Table))
	return id, nil
}

// UpdateDatasetSchema adds missing fields. Fields already present are left untouched.
func (s *Store) UpdateDatasetSchema(ctx context.Context, datasetRef string, fields []recordstore.Field) error {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return err
	}

	existing, err := database.ColumnSet(s.db.WithContext(ctx), ds.Table)
	if err != nil {
		return err
	}

	changed := false
	for _, f := range fields {
		if _, ok := ds.field(f.Name); ok {
			continue
		}

		for _, def := range columnDefs(f) {
			col, _, _ := strings.Cut(def, " ")
			if _, ok := existing[col]; ok {
				continue
			}
			if err := s.db.WithContext(ctx).Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", ds.Table, def)).Error; err != nil {
				return fmt.Errorf("failed to add field %q to dataset %s: %w", f.Name, datasetRef, err)
			}
		}

		ds.Schema = append(ds.Schema, f)
		changed = true
	}

	if !changed {
		return nil
	}
	if err := s.db.WithContext(ctx).Save(ds).Error; err != nil {
		return fmt.Errorf("failed to save schema of dataset %s: %w", datasetRef, err)
	}
	return nil
}

// CreateRecord inserts a record.
func (s *Store) CreateRecord(ctx context.Context, datasetRef string, props recordstore.Properties) (string, error) {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return "", err
	}

	cols, vals, err := ds.assignments(props)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	cols = append([]string{"id", "archived"}, cols...)
	vals = append([]any{id, false}, vals...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ds.Table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if err := s.db.WithContext(ctx).Exec(query, vals...).Error; err != nil {
		return "", fmt.Errorf("failed to insert record into dataset %s: %w", datasetRef, err)
	}
	return id, nil
}

// UpdateRecord overwrites the given properties.
func (s *Store) UpdateRecord(ctx context.Context, datasetRef, recordID string, props recordstore.Properties) error {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return err
	}

	cols, vals, err := ds.assignments(props)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", ds.Table, strings.Join(sets, ", "))
	res := s.db.WithContext(ctx).Exec(query, append(vals, recordID)...)
	if res.Error != nil {
		return fmt.Errorf("failed to update record %s: %w", recordID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %s: %w", recordID, recordstore.ErrNotFound)
	}
	return nil
}

// ArchiveRecord marks a record archived.
func (s *Store) ArchiveRecord(ctx context.Context, datasetRef, recordID string) error {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Exec(fmt.Sprintf("UPDATE %s SET archived = ? WHERE id = ?", ds.Table), true, recordID)
	if res.Error != nil {
		return fmt.Errorf("failed to archive record %s: %w", recordID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %s: %w", recordID, recordstore.ErrNotFound)
	}
	return nil
}

// QueryByField returns live records whose text field equals value.
func (s *Store) QueryByField(ctx context.Context, datasetRef, field, value string) ([]recordstore.Record, error) {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return nil, err
	}

	f, ok := ds.field(field)
	if !ok {
		return nil, fmt.Errorf("dataset %s has no field %q", datasetRef, field)
	}
	if f.Type == recordstore.FieldDate || f.Type == recordstore.FieldCheckbox {
		return nil, fmt.Errorf("field %q of type %s cannot be matched as text", field, f.Type)
	}

	return s.selectRecords(ctx, ds, columnName(field)+" = ?", value)
}

// QueryByDateRange returns live records whose date field overlaps [start, end).
func (s *Store) QueryByDateRange(ctx context.Context, datasetRef, field string, start, end time.Time) ([]recordstore.Record, error) {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return nil, err
	}

	f, ok := ds.field(field)
	if !ok || f.Type != recordstore.FieldDate {
		return nil, fmt.Errorf("dataset %s has no date field %q", datasetRef, field)
	}

	col := columnName(field)
	where := fmt.Sprintf("%[1]s_start IS NOT NULL AND %[1]s_start < ? AND COALESCE(%[1]s_end, %[1]s_start) >= ?", col)
	return s.selectRecords(ctx, ds, where, normalizeTime(end), normalizeTime(start))
}

// QueryAll returns every live record.
func (s *Store) QueryAll(ctx context.Context, datasetRef string) ([]recordstore.Record, error) {
	ds, err := s.dataset(ctx, datasetRef)
	if err != nil {
		return nil, err
	}
	return s.selectRecords(ctx, ds, "")
}

// FindParent returns name. Parents are plain namespaces in a SQL store and always exist.
func (s *Store) FindParent(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("parent: %w", recordstore.ErrNotFound)
	}
	return name, nil
}

// FindDataset looks a dataset up by title.
func (s *Store) FindDataset(ctx context.Context, title string) (string, error) {
	var row datasetRow
	err := s.db.WithContext(ctx).Where("title = ?", title).Order("created_at").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("dataset %q: %w", title, recordstore.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up dataset %q: %w", title, err)
	}
	return row.ID, nil
}

// AppendParagraph stores a note for a parent.
func (s *Store) AppendParagraph(ctx context.Context, parentRef, text string) error {
	note := noteRow{ParentRef: parentRef, Text: text, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return fmt.Errorf("failed to append note to %s: %w", parentRef, err)
	}
	return nil
}

func (s *Store) dataset(ctx context.Context, ref string) (*datasetRow, error) {
	var row datasetRow
	err := s.db.WithContext(ctx).Where("id = ?", ref).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("dataset %s: %w", ref, recordstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", ref, err)
	}
	return &row, nil
}

// selectRecords reads live rows matching where. An empty where selects every live row.
func (s *Store) selectRecords(ctx context.Context, ds *datasetRow, where string, args ...any) ([]recordstore.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE archived = ?", ds.Table)
	params := []any{false}
	if where != "" {
		query += " AND " + where
		params = append(params, args...)
	}

	rows, err := s.db.WithContext(ctx).Raw(query, params...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset %s: %w", ds.ID, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := make([]recordstore.Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[strings.ToLower(c)] = values[i]
		}
		records = append(records, ds.decode(row))
	}

	return records, rows.Err()
}
