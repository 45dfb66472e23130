package syncapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"calendar-sync/core/middleware/auth"
	"calendar-sync/feature/calsync"
	"calendar-sync/feature/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	report *calsync.RunReport
	err    error
	status scheduler.Status
	opts   []calsync.Options
}

func (f *fakeRunner) Trigger(ctx context.Context, opts calsync.Options) (*calsync.RunReport, error) {
	f.opts = append(f.opts, opts)
	return f.report, f.err
}

func (f *fakeRunner) Status() scheduler.Status {
	return f.status
}

func setupTestApp(runner Runner) *fiber.App {
	app := fiber.New()
	NewHandler(NewService(runner, zap.NewNop())).RegisterRoutes(app)
	return app
}

func decode(t *testing.T, app *fiber.App, method, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleHealth(t *testing.T) {
	code, body := decode(t, setupTestApp(&fakeRunner{}), "GET", "/health")
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])
}

func TestHandleStatus(t *testing.T) {
	runner := &fakeRunner{status: scheduler.Status{
		Running:  true,
		Schedule: "*/15 * * * *",
		LastRun:  &calsync.RunReport{RunID: "run-7"},
	}}

	code, body := decode(t, setupTestApp(runner), "GET", "/sync/status")
	assert.Equal(t, 200, code)
	assert.Equal(t, true, body["running"])
	assert.Equal(t, "*/15 * * * *", body["schedule"])
	assert.Equal(t, "run-7", body["last_run"].(map[string]any)["run_id"])
}

func TestHandleRun(t *testing.T) {
	runner := &fakeRunner{report: &calsync.RunReport{RunID: "run-1", Attempted: 2, Succeeded: 2}}
	app := setupTestApp(runner)

	code, body := decode(t, app, "POST", "/sync/run")
	assert.Equal(t, 200, code)
	assert.Equal(t, "run-1", body["run_id"])
	assert.Equal(t, float64(2), body["succeeded"])

	code, _ = decode(t, app, "POST", "/sync/run?dry_run=true")
	assert.Equal(t, 200, code)
	require.Len(t, runner.opts, 2)
	assert.False(t, runner.opts[0].DryRun)
	assert.True(t, runner.opts[1].DryRun)
}

func TestHandleRun_Failures(t *testing.T) {
	runner := &fakeRunner{
		report: &calsync.RunReport{RunID: "run-2", Attempted: 2, Succeeded: 1, Failed: 1},
		err:    errors.New("1 of 2 profiles failed"),
	}
	code, body := decode(t, setupTestApp(runner), "POST", "/sync/run")
	assert.Equal(t, 500, code)
	assert.Equal(t, "1 of 2 profiles failed", body["error"])
	assert.Equal(t, "run-2", body["report"].(map[string]any)["run_id"])
}

func TestHandleRun_NoControlDataset(t *testing.T) {
	runner := &fakeRunner{err: calsync.ErrNoControlDataset}
	code, body := decode(t, setupTestApp(runner), "POST", "/sync/run")
	assert.Equal(t, 503, code)
	assert.Equal(t, "control dataset unavailable", body["error"])
}

func TestRoutes_HealthSkipsAuth(t *testing.T) {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: "secret", SkipPaths: []string{"/health"}}))
	NewHandler(NewService(&fakeRunner{}, zap.NewNop())).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/sync/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/sync/status", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
