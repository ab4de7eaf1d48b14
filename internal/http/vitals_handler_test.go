package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"wisefido-vitals/internal/config"
	"wisefido-vitals/internal/export"
	"wisefido-vitals/internal/models"
	"wisefido-vitals/internal/repository"
	"wisefido-vitals/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (c *countingNotifier) Send(_ context.Context, _, subject, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subjects = append(c.subjects, subject)
	return nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func newTestRouter(t *testing.T) (*Router, *countingNotifier) {
	t.Helper()
	r, n, _ := newTestRouterWithService(t)
	return r, n
}

func newTestRouterWithService(t *testing.T) (*Router, *countingNotifier, *service.VitalsService) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)
	n := &countingNotifier{}
	dispatcher := service.NewAlertDispatcher(n, "oncall@example.com", metrics, zap.NewNop())
	svc := service.NewVitalsService(dispatcher, metrics, zap.NewNop())

	r := NewRouter(zap.NewNop())
	r.RegisterVitalsRoutes(NewVitalsHandler(svc, zap.NewNop()))
	r.RegisterOpsRoutes(reg)
	return r, n, svc
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func register(t *testing.T, h http.Handler) {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/api/v1/session", `{"patient_name":"Alice","patient_id":"p-001"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, ResultSuccess, env.Code)
}

func TestSessionRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := do(t, r, http.MethodGet, "/api/v1/session", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ResultError, env.Code)

	rec, _ = do(t, r, http.MethodPost, "/api/v1/session", `{"patient_name":"","patient_id":"p-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	register(t, r)

	rec, env = do(t, r, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info service.SessionInfo
	require.NoError(t, json.Unmarshal(env.Result, &info))
	assert.Equal(t, "Alice", info.PatientName)
	assert.Equal(t, "idle", info.ManualState)

	rec, _ = do(t, r, http.MethodPost, "/api/v1/session", `{"patient_name":"Bob","patient_id":"p-2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, r, http.MethodDelete, "/api/v1/session", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSubmitVitals(t *testing.T) {
	r, n := newTestRouter(t)
	register(t, r)

	rec, env := do(t, r, http.MethodPost, "/api/v1/vitals",
		`{"temperature":"37","systolic_bp":"120","diastolic_bp":"80","heart_rate":"70","oxygen_saturation":"98"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var normal service.SubmitResult
	require.NoError(t, json.Unmarshal(env.Result, &normal))
	assert.False(t, normal.Emergency)

	rec, env = do(t, r, http.MethodPost, "/api/v1/vitals",
		`{"temperature":"39","systolic_bp":"145","diastolic_bp":"95","heart_rate":"130","oxygen_saturation":"85"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var urgent service.SubmitResult
	require.NoError(t, json.Unmarshal(env.Result, &urgent))
	assert.True(t, urgent.Emergency)
	assert.Equal(t, 1, urgent.Index)
	require.NotNil(t, urgent.Dispatch)
	assert.True(t, urgent.Dispatch.Sent)
	assert.Equal(t, []string{"Emergency Alert for Alice"}, n.subjects)

	rec, env = do(t, r, http.MethodPost, "/api/v1/vitals",
		`{"temperature":"abc","systolic_bp":"120","diastolic_bp":"80","heart_rate":"70","oxygen_saturation":"98"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid numeric input", env.Message)

	rec, _ = do(t, r, http.MethodPost, "/api/v1/vitals", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, r, http.MethodGet, "/api/v1/vitals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Result, &history))
	assert.Len(t, history, 2)
}

func TestSeries(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r)
	for _, hr := range []string{"60", "80"} {
		rec, _ := do(t, r, http.MethodPost, "/api/v1/vitals",
			`{"temperature":"37","systolic_bp":"120","diastolic_bp":"80","heart_rate":"`+hr+`","oxygen_saturation":"98"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := do(t, r, http.MethodGet, "/api/v1/vitals/series?signal=heart_rate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hr SeriesResponse
	require.NoError(t, json.Unmarshal(env.Result, &hr))
	assert.Equal(t, "Heart Rate", hr.Name)
	assert.Equal(t, []SeriesPoint{{Index: 0, Value: 60}, {Index: 1, Value: 80}}, hr.Points)

	rec, env = do(t, r, http.MethodGet, "/api/v1/vitals/series", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []SeriesResponse
	require.NoError(t, json.Unmarshal(env.Result, &all))
	require.Len(t, all, 5)
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, s.Name)
		assert.Len(t, s.Points, 2)
	}
	assert.Equal(t, []string{"Temperature", "Systolic", "Diastolic", "Heart Rate", "Oxygen"}, names)

	rec, _ = do(t, r, http.MethodGet, "/api/v1/vitals/series?signal=glucose", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExports(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r)
	rec, _ := do(t, r, http.MethodPost, "/api/v1/vitals",
		`{"temperature":"36.6","systolic_bp":"120","diastolic_bp":"80","heart_rate":"72","oxygen_saturation":"98"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/api/v1/vitals/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "vitals_history.csv")
	rows, err := export.ReadCSV(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 36.6, rows[0].Temperature)

	rec, _ = do(t, r, http.MethodGet, "/api/v1/vitals/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err = export.ReadXLSX(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPressEmergency(t *testing.T) {
	r, n := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/emergency/press", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	register(t, r)

	rec, env := do(t, r, http.MethodPost, "/api/v1/emergency/press", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var first service.ManualResult
	require.NoError(t, json.Unmarshal(env.Result, &first))
	assert.False(t, first.Fired)
	assert.Empty(t, n.subjects)

	rec, env = do(t, r, http.MethodPost, "/api/v1/emergency/press", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var second service.ManualResult
	require.NoError(t, json.Unmarshal(env.Result, &second))
	assert.True(t, second.Fired)
	assert.Equal(t, "idle", second.State)
	assert.Len(t, n.subjects, 1)

	rec, _ = do(t, r, http.MethodGet, "/api/v1/emergency/press", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOpsRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r)
	do(t, r, http.MethodPost, "/api/v1/vitals", `{"temperature":"x"}`)

	rec, env := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ResultSuccess, env.Code)

	rec, _ = do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vitals_validation_failures_total 1")
}

func TestRecentAlarms(t *testing.T) {
	r, _, svc := newTestRouterWithService(t)
	register(t, r)

	rec, _ := do(t, r, http.MethodGet, "/api/v1/emergency/alarms", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cfg := &config.Config{}
	cfg.Cache.KeyPrefix = "vitals:patient:"
	cfg.Cache.TTL = 60
	svc.WithRealtimeCache(repository.NewRealtimeCache(cfg, client, zap.NewNop()))

	rec, _ = do(t, r, http.MethodPost, "/api/v1/vitals",
		`{"temperature":"39","systolic_bp":"120","diastolic_bp":"80","heart_rate":"70","oxygen_saturation":"98"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	do(t, r, http.MethodPost, "/api/v1/emergency/press", "")
	do(t, r, http.MethodPost, "/api/v1/emergency/press", "")

	rec, env := do(t, r, http.MethodGet, "/api/v1/emergency/alarms?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []models.AlarmEvent
	require.NoError(t, json.Unmarshal(env.Result, &events))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTypeManualEmergency, events[0].EventType)

	rec, env = do(t, r, http.MethodGet, "/api/v1/emergency/alarms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Result, &events))
	assert.Len(t, events, 2)
}
