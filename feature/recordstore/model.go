package recordstore

import "time"

// FieldType is the type of a dataset field.
type FieldType string

const (
	FieldTitle    FieldType = "title"
	FieldRichText FieldType = "rich_text"
	FieldURL      FieldType = "url"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
)

// Field describes one column of a dataset schema.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// DateRange is the value of a date field. End is zero for a single point in time.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end,omitempty"`
}

// Value is a typed field value.
type Value struct {
	Type FieldType  `json:"type"`
	Text string     `json:"text,omitempty"`
	Bool bool       `json:"bool,omitempty"`
	Date *DateRange `json:"date,omitempty"`
}

// Title returns a title value.
func Title(s string) Value { return Value{Type: FieldTitle, Text: s} }

// Text returns a rich text value.
func Text(s string) Value { return Value{Type: FieldRichText, Text: s} }

// URL returns a url value.
func URL(s string) Value { return Value{Type: FieldURL, Text: s} }

// Checkbox returns a checkbox value.
func Checkbox(b bool) Value { return Value{Type: FieldCheckbox, Bool: b} }

// Date returns a date range value. Pass a zero end for a single point in time.
func Date(start, end time.Time) Value {
	return Value{Type: FieldDate, Date: &DateRange{Start: start, End: end}}
}

// Properties maps field names to values.
type Properties map[string]Value

// Record is one row of a dataset.
type Record struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
	Archived   bool       `json:"archived"`
}

// Text returns the textual content of a title, rich text or url field.
func (r Record) Text(name string) string {
	return r.Properties[name].Text
}

// Bool returns the value of a checkbox field.
func (r Record) Bool(name string) bool {
	return r.Properties[name].Bool
}

// Date returns the value of a date field.
func (r Record) Date(name string) (DateRange, bool) {
	v, ok := r.Properties[name]
	if !ok || v.Date == nil {
		return DateRange{}, false
	}
	return *v.Date, true
}

// Has reports whether the record carries a field.
func (r Record) Has(name string) bool {
	_, ok := r.Properties[name]
	return ok
}
