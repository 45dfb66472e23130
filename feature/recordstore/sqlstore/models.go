package sqlstore

import (
	"time"

	"calendar-sync/feature/recordstore"
)

// datasetRow registers one dataset and the table holding its records.
type datasetRow struct {
	ID        string              `gorm:"column:id;primaryKey;size:36"`
	ParentRef string              `gorm:"column:parent_ref;size:191;index"`
	Title     string              `gorm:"column:title;size:191;index"`
	Table     string              `gorm:"column:table_name;size:64"`
	Schema    []recordstore.Field `gorm:"column:fields;type:text;serializer:json"`
	CreatedAt time.Time           `gorm:"column:created_at"`
}

func (datasetRow) TableName() string { return "calsync_datasets" }

// noteRow is a free text note attached to a parent location.
type noteRow struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ParentRef string    `gorm:"column:parent_ref;size:191;index"`
	Text      string    `gorm:"column:body;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (noteRow) TableName() string { return "calsync_notes" }
