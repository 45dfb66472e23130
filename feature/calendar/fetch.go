package calendar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"calendar-sync/core/storage"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FetchConfig holds configuration for calendar feed retrieval.
type FetchConfig struct {
	// TimeoutSeconds bounds a single feed download.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// UserAgent is sent with HTTP feed requests.
	UserAgent string `mapstructure:"user_agent" default:"calendar-sync/1.0"`
	// MaxBytes caps the size of a downloaded feed.
	MaxBytes int64 `mapstructure:"max_bytes" default:"10485760"`
}

// Fetcher downloads raw calendar documents over HTTP(S) or from object storage.
type Fetcher struct {
	client   *resty.Client
	objects  storage.Client
	maxBytes int64
	logger   *zap.Logger
}

// NewFetcher creates a feed fetcher. objects may be nil when s3:// feeds are not used.
func NewFetcher(cfg FetchConfig, objects storage.Client, logger *zap.Logger) *Fetcher {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 15
	}

	client := resty.New().
		SetTimeout(time.Duration(timeout) * time.Second).
		SetHeader("Accept", "text/calendar, */*")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.MaxBytes > 0 {
		client.SetResponseBodyLimit(int(cfg.MaxBytes))
	}

	return &Fetcher{client: client, objects: objects, maxBytes: cfg.MaxBytes, logger: logger}
}

// Fetch returns the raw document behind rawURL.
// webcal:// is fetched as https://. Non-2xx responses are errors; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	l := f.logger.With(zap.String("url", RedactURL(rawURL)))

	var (
		body []byte
		err  error
	)
	switch {
	case strings.HasPrefix(rawURL, "s3://"):
		body, err = f.fetchObject(ctx, rawURL)
	case strings.HasPrefix(rawURL, "webcal://"):
		body, err = f.fetchHTTP(ctx, "https://"+strings.TrimPrefix(rawURL, "webcal://"))
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		body, err = f.fetchHTTP(ctx, rawURL)
	default:
		err = fmt.Errorf("unsupported feed url scheme: %s", RedactURL(rawURL))
	}
	if err != nil {
		return nil, err
	}

	l.Debug("Feed fetched", zap.Int("bytes", len(body)), zap.Duration("duration", time.Since(start)))
	return body, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", RedactURL(target), err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("feed %s returned status %d", RedactURL(target), resp.StatusCode())
	}
	return resp.Body(), nil
}

func (f *Fetcher) fetchObject(ctx context.Context, rawURL string) ([]byte, error) {
	if f.objects == nil {
		return nil, fmt.Errorf("object storage is not configured for %s", rawURL)
	}
	return storage.ReadURL(ctx, f.objects, rawURL, f.maxBytes)
}

// RedactURL reduces a feed URL to scheme and host. Feed URLs often embed private tokens.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<invalid-url>"
	}
	return u.Scheme + "://" + u.Host
}
