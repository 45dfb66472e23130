package calsync

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"calendar-sync/feature/recordstore"
	"calendar-sync/feature/recordstore/sqlstore"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var runStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := sqlstore.New(db, zap.NewNop())
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// feed renders a calendar with a weekly standup of count occurrences starting 2024-06-01 09:00 UTC.
func standupFeed(count int) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//calendar-sync//test//EN",
		"BEGIN:VEVENT",
		"UID:standup@example.com",
		"SUMMARY:Standup",
		"DTSTART:20240601T090000Z",
		"DTEND:20240601T093000Z",
		fmt.Sprintf("RRULE:FREQ=WEEKLY;COUNT=%d", count),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

// fakeFeeds serves documents by URL.
type fakeFeeds map[string][]byte

func (f fakeFeeds) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("feed %s returned status 404", url)
	}
	return body, nil
}

func addControlRow(t *testing.T, store recordstore.Store, controlRef, name, url string, enabled bool) string {
	t.Helper()
	id, err := store.CreateRecord(context.Background(), controlRef, recordstore.Properties{
		FieldIdentifier: recordstore.Title(name),
		FieldFeedURL:    recordstore.URL(url),
		FieldEnabled:    recordstore.Checkbox(enabled),
	})
	require.NoError(t, err)
	return id
}

func liveRecords(t *testing.T, store recordstore.Store, datasetRef string) []recordstore.Record {
	t.Helper()
	recs, err := store.QueryAll(context.Background(), datasetRef)
	require.NoError(t, err)
	return recs
}
