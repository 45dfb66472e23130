package sqlstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"calendar-sync/feature/recordstore"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var eventSchema = []recordstore.Field{
	{Name: "Name", Type: recordstore.FieldTitle},
	{Name: "Due Date", Type: recordstore.FieldDate},
	{Name: "EventUID", Type: recordstore.FieldRichText},
	{Name: "InstanceUID", Type: recordstore.FieldRichText},
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := New(db, zap.NewNop())
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func eventProps(title, uid, instance string, start time.Time) recordstore.Properties {
	return recordstore.Properties{
		"Name":        recordstore.Title(title),
		"Due Date":    recordstore.Date(start, start.Add(30*time.Minute)),
		"EventUID":    recordstore.Text(uid),
		"InstanceUID": recordstore.Text(instance),
	}
}

func TestStore_RecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	ref, err := s.CreateDataset(ctx, "Calendar Sync", "Work", eventSchema)
	require.NoError(t, err)

	june1 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	id1, err := s.CreateRecord(ctx, ref, eventProps("Standup", "u1", "i1", june1))
	require.NoError(t, err)
	_, err = s.CreateRecord(ctx, ref, eventProps("Planning", "u2", "i2", june1.AddDate(0, 1, 0)))
	require.NoError(t, err)

	recs, err := s.QueryByField(ctx, ref, "InstanceUID", "i1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, id1, recs[0].ID)
	assert.Equal(t, "Standup", recs[0].Text("Name"))
	assert.Equal(t, "u1", recs[0].Text("EventUID"))
	d, ok := recs[0].Date("Due Date")
	require.True(t, ok)
	assert.True(t, d.Start.Equal(june1))
	assert.True(t, d.End.Equal(june1.Add(30*time.Minute)))

	windowStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	inWindow, err := s.QueryByDateRange(ctx, ref, "Due Date", windowStart, windowStart.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.Len(t, inWindow, 1)
	assert.Equal(t, id1, inWindow[0].ID)

	require.NoError(t, s.UpdateRecord(ctx, ref, id1, recordstore.Properties{"Name": recordstore.Title("Daily Standup")}))
	recs, err = s.QueryByField(ctx, ref, "InstanceUID", "i1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Daily Standup", recs[0].Text("Name"))
	assert.Equal(t, "i1", recs[0].Text("InstanceUID"))

	require.NoError(t, s.ArchiveRecord(ctx, ref, id1))
	recs, err = s.QueryByField(ctx, ref, "InstanceUID", "i1")
	require.NoError(t, err)
	assert.Empty(t, recs)

	all, err := s.QueryAll(ctx, ref)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_InProgressRecordOverlapsWindow(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	ref, err := s.CreateDataset(ctx, "p", "Work", eventSchema)
	require.NoError(t, err)

	start := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	_, err = s.CreateRecord(ctx, ref, recordstore.Properties{
		"Due Date":    recordstore.Date(start, start.Add(2*time.Hour)),
		"InstanceUID": recordstore.Text("late"),
	})
	require.NoError(t, err)

	windowStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recs, err := s.QueryByDateRange(ctx, ref, "Due Date", windowStart, windowStart.AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.QueryAll(ctx, "missing")
	assert.ErrorIs(t, err, recordstore.ErrNotFound)

	ref, err := s.CreateDataset(ctx, "p", "Work", eventSchema)
	require.NoError(t, err)

	_, err = s.CreateRecord(ctx, ref, recordstore.Properties{"Unknown": recordstore.Text("x")})
	assert.Error(t, err)

	_, err = s.CreateRecord(ctx, ref, recordstore.Properties{"Name": recordstore.Text("wrong type")})
	assert.Error(t, err)

	_, err = s.QueryByField(ctx, ref, "Due Date", "x")
	assert.Error(t, err)

	_, err = s.QueryByDateRange(ctx, ref, "Name", time.Now(), time.Now())
	assert.Error(t, err)

	err = s.ArchiveRecord(ctx, ref, "no-such-record")
	assert.ErrorIs(t, err, recordstore.ErrNotFound)

	err = s.UpdateRecord(ctx, ref, "no-such-record", recordstore.Properties{"Name": recordstore.Title("x")})
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
}

func TestStore_UpdateDatasetSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	ref, err := s.CreateDataset(ctx, "p", "Control", []recordstore.Field{
		{Name: "Identifier/Name", Type: recordstore.FieldTitle},
		{Name: "ICAL URL", Type: recordstore.FieldURL},
		{Name: "Sync_Enabled", Type: recordstore.FieldCheckbox},
	})
	require.NoError(t, err)

	id, err := s.CreateRecord(ctx, ref, recordstore.Properties{
		"Identifier/Name": recordstore.Title("Work"),
		"ICAL URL":        recordstore.URL("https://example.com/work.ics"),
		"Sync_Enabled":    recordstore.Checkbox(true),
	})
	require.NoError(t, err)

	extra := []recordstore.Field{{Name: "Database ID", Type: recordstore.FieldRichText}}
	require.NoError(t, s.UpdateDatasetSchema(ctx, ref, extra))
	require.NoError(t, s.UpdateDatasetSchema(ctx, ref, extra))

	require.NoError(t, s.UpdateRecord(ctx, ref, id, recordstore.Properties{"Database ID": recordstore.Text("db-1")}))

	recs, err := s.QueryAll(ctx, ref)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "db-1", recs[0].Text("Database ID"))
	assert.Equal(t, "https://example.com/work.ics", recs[0].Text("ICAL URL"))
	assert.True(t, recs[0].Bool("Sync_Enabled"))
}

func TestStore_Locator(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	parent, err := s.FindParent(ctx, "Calendar Sync")
	require.NoError(t, err)
	assert.Equal(t, "Calendar Sync", parent)

	_, err = s.FindParent(ctx, " ")
	assert.ErrorIs(t, err, recordstore.ErrNotFound)

	_, err = s.FindDataset(ctx, "Control")
	assert.ErrorIs(t, err, recordstore.ErrNotFound)

	ref, err := s.CreateDataset(ctx, parent, "Control", nil)
	require.NoError(t, err)

	found, err := s.FindDataset(ctx, "Control")
	require.NoError(t, err)
	assert.Equal(t, ref, found)

	require.NoError(t, s.AppendParagraph(ctx, parent, "Add one row per calendar."))
	var count int64
	require.NoError(t, s.db.Model(&noteRow{}).Where("parent_ref = ?", parent).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_UpdateDatasetSchema_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db, zap.NewNop())

	registry := sqlmock.NewRows([]string{"id", "parent_ref", "title", "table_name", "fields", "created_at"}).
		AddRow("ds-1", "p", "Control", "ds_1", `[{"name":"Identifier/Name","type":"title"}]`, time.Now())
	mock.ExpectQuery("SELECT \\* FROM `calsync_datasets`").WillReturnRows(registry)

	columns := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "varchar(36)", "NO", "PRI", nil, "").
		AddRow("archived", "tinyint(1)", "NO", "", "0", "").
		AddRow("identifier_name", "text", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `ds_1`").WillReturnRows(columns)

	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE ds_1 ADD COLUMN database_id TEXT NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `calsync_datasets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdateDatasetSchema(context.Background(), "ds-1", []recordstore.Field{
		{Name: "Identifier/Name", Type: recordstore.FieldTitle},
		{Name: "Database ID", Type: recordstore.FieldRichText},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateDataset_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db, zap.NewNop())

	mock.ExpectExec(`CREATE TABLE ds_[0-9a-f]{32} \(id VARCHAR\(36\) NOT NULL PRIMARY KEY, archived BOOLEAN NOT NULL DEFAULT 0, name TEXT NULL, due_date_start DATETIME NULL, due_date_end DATETIME NULL, eventuid TEXT NULL, instanceuid TEXT NULL\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `calsync_datasets`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ref, err := s.CreateDataset(context.Background(), "p", "Work", eventSchema)
	assert.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnName(t *testing.T) {
	tests := map[string]string{
		"Name":            "name",
		"Due Date":        "due_date",
		"Identifier/Name": "identifier_name",
		"ICAL URL":        "ical_url",
		"Sync_Enabled":    "sync_enabled",
		"Database ID":     "database_id",
		"  Trailing!! ":   "trailing",
		"ID":              "f_id",
		"archived":        "f_archived",
	}
	for in, want := range tests {
		assert.Equal(t, want, columnName(in), in)
	}
}
