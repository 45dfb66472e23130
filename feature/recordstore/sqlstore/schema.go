package sqlstore

import (
	"fmt"
	"strings"
	"time"

	"calendar-sync/core/utils"
	"calendar-sync/feature/recordstore"
)

// columnName derives a column from a field name: lower case, every run of
// other characters collapsed to an underscore.
func columnName(field string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(field)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}

	col := strings.TrimSuffix(b.String(), "_")
	switch col {
	case "", "id", "archived":
		col = "f_" + col
	}
	return col
}

// columnDefs returns the column definitions backing a field.
func columnDefs(f recordstore.Field) []string {
	col := columnName(f.Name)
	switch f.Type {
	case recordstore.FieldCheckbox:
		return []string{col + " BOOLEAN NOT NULL DEFAULT 0"}
	case recordstore.FieldDate:
		return []string{col + "_start DATETIME NULL", col + "_end DATETIME NULL"}
	default:
		return []string{col + " TEXT NULL"}
	}
}

// normalizeTime stores instants as UTC with second precision so that text and
// DATETIME comparisons agree across drivers.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (d *datasetRow) field(name string) (recordstore.Field, bool) {
	for _, f := range d.Schema {
		if f.Name == name {
			return f, true
		}
	}
	return recordstore.Field{}, false
}

// assignments maps properties to columns and driver values.
func (d *datasetRow) assignments(props recordstore.Properties) ([]string, []any, error) {
	cols := make([]string, 0, len(props))
	vals := make([]any, 0, len(props))

	for name, v := range props {
		f, ok := d.field(name)
		if !ok {
			return nil, nil, fmt.Errorf("dataset %s has no field %q", d.ID, name)
		}
		if v.Type != f.Type {
			return nil, nil, fmt.Errorf("field %q is %s, got %s", name, f.Type, v.Type)
		}

		col := columnName(name)
		switch f.Type {
		case recordstore.FieldCheckbox:
			cols = append(cols, col)
			vals = append(vals, v.Bool)
		case recordstore.FieldDate:
			var start, end any
			if v.Date != nil && !v.Date.Start.IsZero() {
				start = normalizeTime(v.Date.Start)
				if !v.Date.End.IsZero() {
					end = normalizeTime(v.Date.End)
				}
			}
			cols = append(cols, col+"_start", col+"_end")
			vals = append(vals, start, end)
		default:
			cols = append(cols, col)
			vals = append(vals, v.Text)
		}
	}

	return cols, vals, nil
}

// decode builds a record from a scanned row keyed by lower-cased column.
func (d *datasetRow) decode(row map[string]any) recordstore.Record {
	rec := recordstore.Record{
		ID:         utils.ToString(row["id"]),
		Archived:   utils.ToBool(row["archived"]),
		Properties: make(recordstore.Properties, len(d.Schema)),
	}

	for _, f := range d.Schema {
		col := columnName(f.Name)
		switch f.Type {
		case recordstore.FieldCheckbox:
			rec.Properties[f.Name] = recordstore.Checkbox(utils.ToBool(row[col]))
		case recordstore.FieldDate:
			start, ok := utils.ToTime(row[col+"_start"])
			if !ok {
				rec.Properties[f.Name] = recordstore.Value{Type: recordstore.FieldDate}
				continue
			}
			end, _ := utils.ToTime(row[col+"_end"])
			rec.Properties[f.Name] = recordstore.Date(start, end)
		default:
			rec.Properties[f.Name] = recordstore.Value{Type: f.Type, Text: utils.ToString(row[col])}
		}
	}

	return rec
}
