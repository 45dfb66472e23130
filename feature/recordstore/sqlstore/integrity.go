package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"calendar-sync/core/database"

	"go.uber.org/zap"
)

// IntegrityReport is the result of comparing every registered dataset with its table.
type IntegrityReport struct {
	Matched  bool            `json:"matched"`
	Datasets []DatasetReport `json:"datasets"`
}

// DatasetReport describes one dataset table.
type DatasetReport struct {
	Dataset        string   `json:"dataset"`
	Title          string   `json:"title"`
	Table          string   `json:"table"`
	MissingColumns []string `json:"missing_columns"`
	Fixed          []string `json:"fixed,omitempty"`
	Status         string   `json:"status"` // "ok", "fixed", "error"
	Error          string   `json:"error,omitempty"`
}

// CheckIntegrity verifies that every registered dataset has a table carrying
// the columns its schema needs. With fix set, missing columns are added.
func (s *Store) CheckIntegrity(ctx context.Context, fix bool) (*IntegrityReport, error) {
	var rows []datasetRow
	if err := s.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	report := &IntegrityReport{Matched: true, Datasets: make([]DatasetReport, 0, len(rows))}
	for _, ds := range rows {
		r := s.checkDataset(ctx, ds, fix)
		if r.Status == "error" {
			report.Matched = false
		}
		report.Datasets = append(report.Datasets, r)
	}
	return report, nil
}

func (s *Store) checkDataset(ctx context.Context, ds datasetRow, fix bool) DatasetReport {
	r := DatasetReport{
		Dataset:        ds.ID,
		Title:          ds.Title,
		Table:          ds.Table,
		MissingColumns: []string{},
		Status:         "ok",
	}

	existing, err := database.ColumnSet(s.db.WithContext(ctx), ds.Table)
	if err != nil {
		r.Status, r.Error = "error", err.Error()
		return r
	}
	if len(existing) == 0 {
		r.Status, r.Error = "error", "table does not exist"
		return r
	}

	defs := []string{"id VARCHAR(36) NOT NULL PRIMARY KEY", "archived BOOLEAN NOT NULL DEFAULT 0"}
	for _, f := range ds.Schema {
		defs = append(defs, columnDefs(f)...)
	}

	var missing []string
	for _, def := range defs {
		col, _, _ := strings.Cut(def, " ")
		if _, ok := existing[col]; !ok {
			r.MissingColumns = append(r.MissingColumns, col)
			missing = append(missing, def)
		}
	}
	if len(missing) == 0 {
		return r
	}

	if !fix {
		r.Status = "error"
		return r
	}

	for _, def := range missing {
		col, _, _ := strings.Cut(def, " ")
		if err := s.db.WithContext(ctx).Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", ds.Table, def)).Error; err != nil {
			r.Status, r.Error = "error", fmt.Sprintf("failed to add column %s: %v", col, err)
			return r
		}
		r.Fixed = append(r.Fixed, col)
	}
	r.Status = "fixed"
	s.logger.Info("Dataset table repaired", zap.String("dataset", ds.ID), zap.Strings("columns", r.Fixed))
	return r
}
