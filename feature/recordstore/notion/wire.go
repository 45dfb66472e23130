package notion

import (
	"strings"
	"time"

	"calendar-sync/core/utils"
	"calendar-sync/feature/recordstore"
)

// object is a page or database as returned by the API.
type object struct {
	Object     string                   `json:"object"`
	ID         string                   `json:"id"`
	Archived   bool                     `json:"archived"`
	Title      []textItem               `json:"title"`
	Properties map[string]propertyValue `json:"properties"`
}

type listResponse struct {
	Results    []object `json:"results"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor"`
}

type textItem struct {
	PlainText string `json:"plain_text"`
	Text      struct {
		Content string `json:"content"`
	} `json:"text"`
}

type dateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

type propertyValue struct {
	Type     string     `json:"type"`
	Title    []textItem `json:"title"`
	RichText []textItem `json:"rich_text"`
	URL      *string    `json:"url"`
	Checkbox bool       `json:"checkbox"`
	Date     *dateValue `json:"date"`
}

// displayTitle returns the title of a database, or of a page via its title property.
func (o object) displayTitle() string {
	if len(o.Title) > 0 {
		return plainText(o.Title)
	}
	for _, p := range o.Properties {
		if p.Type == string(recordstore.FieldTitle) {
			return plainText(p.Title)
		}
	}
	return ""
}

func plainText(items []textItem) string {
	var b strings.Builder
	for _, it := range items {
		if it.PlainText != "" {
			b.WriteString(it.PlainText)
		} else {
			b.WriteString(it.Text.Content)
		}
	}
	return b.String()
}

func richText(s string) []any {
	if s == "" {
		return []any{}
	}
	return []any{map[string]any{"type": "text", "text": map[string]any{"content": s}}}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func encodeSchema(fields []recordstore.Field) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.Name] = map[string]any{string(f.Type): map[string]any{}}
	}
	return props
}

func encodeProperties(props recordstore.Properties) map[string]any {
	out := make(map[string]any, len(props))
	for name, v := range props {
		switch v.Type {
		case recordstore.FieldTitle:
			out[name] = map[string]any{"title": richText(v.Text)}
		case recordstore.FieldRichText:
			out[name] = map[string]any{"rich_text": richText(v.Text)}
		case recordstore.FieldURL:
			var u any
			if v.Text != "" {
				u = v.Text
			}
			out[name] = map[string]any{"url": u}
		case recordstore.FieldCheckbox:
			out[name] = map[string]any{"checkbox": v.Bool}
		case recordstore.FieldDate:
			if v.Date == nil || v.Date.Start.IsZero() {
				out[name] = map[string]any{"date": nil}
				continue
			}
			d := map[string]any{"start": formatTime(v.Date.Start)}
			if !v.Date.End.IsZero() {
				d["end"] = formatTime(v.Date.End)
			}
			out[name] = map[string]any{"date": d}
		}
	}
	return out
}

func decodeRecord(o object) recordstore.Record {
	rec := recordstore.Record{
		ID:         o.ID,
		Archived:   o.Archived,
		Properties: make(recordstore.Properties, len(o.Properties)),
	}

	for name, p := range o.Properties {
		switch recordstore.FieldType(p.Type) {
		case recordstore.FieldTitle:
			rec.Properties[name] = recordstore.Title(plainText(p.Title))
		case recordstore.FieldRichText:
			rec.Properties[name] = recordstore.Text(plainText(p.RichText))
		case recordstore.FieldURL:
			rec.Properties[name] = recordstore.URL(derefString(p.URL))
		case recordstore.FieldCheckbox:
			rec.Properties[name] = recordstore.Checkbox(p.Checkbox)
		case recordstore.FieldDate:
			if p.Date == nil {
				rec.Properties[name] = recordstore.Value{Type: recordstore.FieldDate}
				continue
			}
			start, _ := utils.ToTime(p.Date.Start)
			var end time.Time
			if p.Date.End != nil {
				end, _ = utils.ToTime(*p.Date.End)
			}
			rec.Properties[name] = recordstore.Date(start, end)
		}
	}

	return rec
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
