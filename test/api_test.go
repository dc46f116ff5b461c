package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/api"
	"github.com/yourname/timesheet/internal/auth"
	"github.com/yourname/timesheet/internal/config"
	"github.com/yourname/timesheet/internal/export"
	"github.com/yourname/timesheet/internal/storage"
	"github.com/yourname/timesheet/internal/timeutil"
)

const testSecret = "test-secret"

func pinClock(t *testing.T) {
	t.Helper()
	fixed := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	prev := timeutil.Now
	timeutil.Now = func() time.Time { return fixed }
	t.Cleanup(func() { timeutil.Now = prev })
}

func setupServer(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	pinClock(t)

	cfg := &config.Config{
		Env:             "test",
		DefaultLanguage: "en",
		ExportDir:       t.TempDir(),
	}
	repos, err := storage.NewFileRepositories(filepath.Join(t.TempDir(), "data.json"), internal.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	sink, err := export.NewFileSink(cfg.ExportDir, internal.NopLogger{})
	require.NoError(t, err)

	app := api.NewApplication(internal.NopLogger{}, repos, cfg, sink)
	router := api.NewRouter(app, auth.NewJWTProvider(testSecret, internal.NopLogger{}))

	return router, issueToken(t, "u1", "ja-JP")
}

func issueToken(t *testing.T, userID, locale string) string {
	t.Helper()
	token, err := auth.IssueToken(testSecret, &internal.User{
		ID:     userID,
		Email:  userID + "@example.com",
		Locale: locale,
	})
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestRequiresAuthentication(t *testing.T) {
	router, _ := setupServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/report/202501", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/report/202501", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddEntryAndDailyReport(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/entries", token,
		`{"kind":"work","date":"20250110","entry":{"start":"09:00","end":"12:00","project_code":"alpha"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/report/202501/daily/20250110", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(180), data["work_minutes"])
	assert.Equal(t, 3.0, data["work_hours"])
}

func TestAddEntryConflictReturnsValidationFields(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/entries", token,
		`{"kind":"work","date":"20250110","entry":{"start":"09:00","end":"12:00"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/entries", token,
		`{"kind":"work","date":"20250110","entry":{"start":"10:00","end":"13:00"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	errObj := decodeEnvelope(t, w)["error"].(map[string]any)
	fields := errObj["fields"].(map[string]any)
	assert.Contains(t, fields, "start")
}

func TestStartAndFinishWork(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/entries/start", token,
		`{"kind":"work","project_code":"alpha"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/entries/finish", token, `{"kind":"work"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A second finish has nothing left to close.
	w = doJSON(t, router, http.MethodPost, "/api/entries/finish", token, `{"kind":"work"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMonthlyReport(t *testing.T) {
	router, token := setupServer(t)

	for _, body := range []string{
		`{"kind":"work","date":"20250110","entry":{"start":"09:00","end":"17:00"}}`,
		`{"kind":"break_time","date":"20250110","entry":{"start":"12:00","end":"13:00"}}`,
		`{"kind":"work","date":"20250113","entry":{"start":"09:00","end":"11:00"}}`,
	} {
		w := doJSON(t, router, http.MethodPost, "/api/entries", token, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodGet, "/api/report/202501", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "2025/01", data["month"])
	assert.Equal(t, float64(420+120), data["work_minutes"])
	assert.Equal(t, float64(60), data["break_time_minutes"])
	assert.Equal(t, float64(2), data["num_of_working_days"])
}

func TestAdminReportAccess(t *testing.T) {
	router, token := setupServer(t)

	// No admin users registered: everyone has admin access.
	w := doJSON(t, router, http.MethodGet, "/api/admin/report/202501", token, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Register someone else as the only admin; u1 loses access.
	w = doJSON(t, router, http.MethodPost, "/api/admin/users", token, `{"user_id":"boss"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/admin/report/202501", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	bossToken := issueToken(t, "boss", "en-US")
	w = doJSON(t, router, http.MethodGet, "/api/admin/report/202501", bossToken, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestManualEntryPolicy(t *testing.T) {
	router, token := setupServer(t)

	// u1 stays a regular member while "boss" holds admin.
	w := doJSON(t, router, http.MethodPost, "/api/admin/users", token, `{"user_id":"boss"}`)
	require.Equal(t, http.StatusOK, w.Code)

	bossToken := issueToken(t, "boss", "en-US")
	w = doJSON(t, router, http.MethodPut, "/api/admin/policies", bossToken,
		`{"key":"is_manual_entry_permitted","value":"restricted"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/entries", token,
		`{"kind":"work","date":"20250110","entry":{"start":"09:00","end":"12:00"}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Start/finish stays open to everyone under the restriction.
	w = doJSON(t, router, http.MethodPost, "/api/entries/start", token, `{"kind":"work"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Admins may still type entries in by hand.
	w = doJSON(t, router, http.MethodPost, "/api/entries", bossToken,
		`{"kind":"work","date":"20250110","entry":{"start":"09:00","end":"12:00"}}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestExportMonthlyReport(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/entries", token,
		`{"kind":"work","date":"20250110","entry":{"start":"09:00","end":"12:00"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/report/202501/export", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meta := decodeEnvelope(t, w)["meta"].(map[string]any)
	url := meta["url"].(string)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.Equal(t, "u1-202501.json", meta["filename"])

	payload, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"month": "2025/01"`)
}

func TestSettingsRoundTrip(t *testing.T) {
	router, token := setupServer(t)

	// Defaults derive from the token's ja-JP locale.
	w := doJSON(t, router, http.MethodGet, "/api/settings", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "ja", data["language"])
	assert.Equal(t, "jp", data["country_id"])

	w = doJSON(t, router, http.MethodPut, "/api/settings", token,
		`{"language":"en","country_id":"us","app_mode":"work_and_lifelogs"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/settings", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "en", data["language"])
	assert.Equal(t, "us", data["country_id"])
	assert.Equal(t, "work_and_lifelogs", data["app_mode"])
}

func TestProjectValidation(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/projects", token,
		`{"code":"alpha","name":"Alpha"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Duplicate code rejected.
	w = doJSON(t, router, http.MethodPost, "/api/projects", token,
		`{"code":"alpha","name":"Alpha again"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	// Invalid characters rejected.
	w = doJSON(t, router, http.MethodPost, "/api/projects", token,
		`{"code":"bad code!","name":"Bad"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/projects", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	projects := decodeEnvelope(t, w)["data"].([]any)
	require.Len(t, projects, 1)
}

func TestViewRegistration(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/views", token,
		`{"view_id":"v1","callback_id":"main"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, "u1", data["user_id"])

	w = doJSON(t, router, http.MethodDelete, "/api/views/v1", token, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLifelogFlow(t *testing.T) {
	router, token := setupServer(t)

	w := doJSON(t, router, http.MethodPut, "/api/settings", token,
		`{"language":"en","app_mode":"work_and_lifelogs"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/lifelogs", token,
		`{"date":"20250110","entry":{"start":"19:00","end":"20:00","what_to_do":"reading"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/report/202501?lifelogs=true", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	lifelogs := data["lifelogs"].([]any)
	require.Len(t, lifelogs, 1)
	entry := lifelogs[0].(map[string]any)
	assert.Equal(t, "reading", entry["what_to_do"])
	assert.Equal(t, float64(60), entry["spent_minutes"])
}
