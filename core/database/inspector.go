package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Column is one column of a table as reported by the database.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// TableColumns lists the columns of a table with lower-cased names and types.
// A table that does not exist has no columns.
func TableColumns(db *gorm.DB, table string) ([]Column, error) {
	var (
		cols []Column
		err  error
	)
	if db.Dialector.Name() == "sqlite" {
		cols, err = sqliteColumns(db, table)
	} else {
		cols, err = mysqlColumns(db, table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}

	for i := range cols {
		cols[i].Name = strings.ToLower(cols[i].Name)
		cols[i].Type = strings.ToLower(cols[i].Type)
	}
	return cols, nil
}

func sqliteColumns(db *gorm.DB, table string) ([]Column, error) {
	var rows []struct {
		Name    string
		Type    string
		Notnull int
		Pk      int
	}
	if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", table)).Scan(&rows).Error; err != nil {
		return nil, err
	}

	cols := make([]Column, len(rows))
	for i, r := range rows {
		cols[i] = Column{Name: r.Name, Type: r.Type, Nullable: r.Notnull == 0, PrimaryKey: r.Pk > 0}
	}
	return cols, nil
}

func mysqlColumns(db *gorm.DB, table string) ([]Column, error) {
	var rows []struct {
		Field string
		Type  string
		Null  string
		Key   string
	}
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", table)).Scan(&rows).Error; err != nil {
		return nil, err
	}

	cols := make([]Column, len(rows))
	for i, r := range rows {
		cols[i] = Column{Name: r.Field, Type: r.Type, Nullable: r.Null == "YES", PrimaryKey: r.Key == "PRI"}
	}
	return cols, nil
}

// ColumnSet returns the column names of a table as a set.
func ColumnSet(db *gorm.DB, table string) (map[string]struct{}, error) {
	cols, err := TableColumns(db, table)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c.Name] = struct{}{}
	}
	return set, nil
}
