package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"calendar-sync/core/storage"
	"calendar-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{name: "plain endpoint", cfg: storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{name: "scheme is stripped", cfg: storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true, Region: "eu-west-1"}},
		{name: "default timeout", cfg: storage.Config{Endpoint: "minio:9000", TimeoutSeconds: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestReadURL(t *testing.T) {
	ctx := context.Background()
	feed := "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"

	t.Run("reads object", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("StatObject", mock.Anything, "feeds", "team/cal.ics", mock.Anything).
			Return(minio.ObjectInfo{Size: int64(len(feed))}, nil)
		c.On("GetObject", mock.Anything, "feeds", "team/cal.ics", mock.Anything).
			Return(io.NopCloser(strings.NewReader(feed)), nil)

		body, err := storage.ReadURL(ctx, c, "s3://feeds/team/cal.ics", 0)
		require.NoError(t, err)
		assert.Equal(t, feed, string(body))
		c.AssertExpectations(t)
	})

	t.Run("rejects oversized object", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("StatObject", mock.Anything, "feeds", "big.ics", mock.Anything).
			Return(minio.ObjectInfo{Size: 2048}, nil)

		_, err := storage.ReadURL(ctx, c, "s3://feeds/big.ics", 1024)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit is 1024")
		c.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stat failure", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("StatObject", mock.Anything, "feeds", "missing.ics", mock.Anything).
			Return(minio.ObjectInfo{}, errors.New("no such key"))

		_, err := storage.ReadURL(ctx, c, "s3://feeds/missing.ics", 0)
		assert.ErrorContains(t, err, "no such key")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := storage.ReadURL(ctx, new(mocks.Client), "s3://feeds", 0)
		assert.Error(t, err)
	})
}

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{name: "simple", raw: "s3://feeds/team.ics", wantBucket: "feeds", wantObject: "team.ics"},
		{name: "nested key", raw: "s3://feeds/a/b/c.ics", wantBucket: "feeds", wantObject: "a/b/c.ics"},
		{name: "missing object", raw: "s3://feeds", wantErr: true},
		{name: "missing object after slash", raw: "s3://feeds/", wantErr: true},
		{name: "wrong scheme", raw: "https://feeds/team.ics", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := storage.ParseObjectURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}
