package calsync

import "calendar-sync/feature/recordstore"

// Target dataset fields.
const (
	FieldName        = "Name"
	FieldDueDate     = "Due Date"
	FieldEventUID    = "EventUID"
	FieldInstanceUID = "InstanceUID"
)

// Control dataset fields.
const (
	FieldIdentifier = "Identifier/Name"
	FieldFeedURL    = "ICAL URL"
	FieldEnabled    = "Sync_Enabled"
	FieldDatasetRef = "Database ID"
)

// TargetSchema is the schema of every provisioned target dataset.
func TargetSchema() []recordstore.Field {
	return []recordstore.Field{
		{Name: FieldName, Type: recordstore.FieldTitle},
		{Name: FieldDueDate, Type: recordstore.FieldDate},
		{Name: FieldEventUID, Type: recordstore.FieldRichText},
		{Name: FieldInstanceUID, Type: recordstore.FieldRichText},
	}
}

// ControlSchema is the schema a new control dataset starts with. The
// reference field is added by the first provisioning run.
func ControlSchema() []recordstore.Field {
	return []recordstore.Field{
		{Name: FieldIdentifier, Type: recordstore.FieldTitle},
		{Name: FieldFeedURL, Type: recordstore.FieldURL},
		{Name: FieldEnabled, Type: recordstore.FieldCheckbox},
	}
}

func refField() recordstore.Field {
	return recordstore.Field{Name: FieldDatasetRef, Type: recordstore.FieldRichText}
}
