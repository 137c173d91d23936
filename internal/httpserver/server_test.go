package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/readlog/internal/config"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/service"
	"github.com/MrSnakeDoc/readlog/internal/store/memory"
	"github.com/MrSnakeDoc/readlog/internal/version"
)

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T, tweak ...func(*config.Config, *deps.Deps)) *testServer {
	t.Helper()

	st := memory.NewStore()
	log := logger.NewNop()
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

	cfg := &config.Config{RequestTimeout: 5 * time.Second}
	d := deps.Deps{
		Logger:             log,
		StartTime:          now,
		Records:            service.NewRecordService(st, log, service.WithClock(func() time.Time { return now })),
		Store:              st,
		MaxUploadBytes:     1 << 20,
		ImportBurst:        100,
		ImportRefillPerMin: 100,
	}
	for _, fn := range tweak {
		fn(cfg, &d)
	}
	return &testServer{handler: NewRouter(cfg, d), store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	part, err := mpw.CreateFormFile("csvFile", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mpw.Close())

	req := httptest.NewRequest(http.MethodPost, "/records/import/preview", &buf)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type recordBody struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	StatusLabel     string `json:"status_label"`
	CurrentPage     int    `json:"current_page"`
	TotalPages      *int   `json:"total_pages"`
	ProgressPercent int    `json:"progress_percent"`
}

type recordEnvelope struct {
	Message string     `json:"message"`
	Error   string     `json:"error"`
	Record  recordBody `json:"record"`
}

func TestRecordCRUD(t *testing.T) {
	ts := newTestServer(t)

	created := ts.do(t, http.MethodPost, "/records", map[string]any{
		"title": "Dune", "author": "Frank Herbert", "status": "読書中",
		"current_page": 103, "total_pages": 412,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	env := decode[recordEnvelope](t, created)
	assert.Equal(t, "record saved", env.Message)
	assert.Equal(t, "READING", env.Record.Status)
	assert.Equal(t, "読書中", env.Record.StatusLabel)
	assert.Equal(t, 25, env.Record.ProgressPercent)
	id := env.Record.ID

	got := ts.do(t, http.MethodGet, "/records/1", nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "Dune", decode[recordEnvelope](t, got).Record.Title)

	updated := ts.do(t, http.MethodPut, "/records/1", map[string]any{
		"title": "Dune", "status": "COMPLETED", "current_page": 412, "total_pages": 412,
	})
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	env = decode[recordEnvelope](t, updated)
	assert.Equal(t, id, env.Record.ID)
	assert.Equal(t, 100, env.Record.ProgressPercent)

	deleted := ts.do(t, http.MethodDelete, "/records/1", nil)
	require.Equal(t, http.StatusOK, deleted.Code)

	missing := ts.do(t, http.MethodGet, "/records/1", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestRecordErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank title", http.MethodPost, "/records", map[string]any{"title": "  "}, http.StatusBadRequest},
		{"unknown status", http.MethodPost, "/records", map[string]any{"title": "x", "status": "LOST"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/records", map[string]any{"title": "x", "rating": 5}, http.StatusBadRequest},
		{"negative total", http.MethodPost, "/records", map[string]any{"title": "x", "total_pages": -1}, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/records/42", map[string]any{"title": "x"}, http.StatusNotFound},
		{"non numeric id", http.MethodGet, "/records/abc", nil, http.StatusNotFound},
		{"zero id", http.MethodGet, "/records/0", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestListRecords(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []map[string]any{
		{"title": "a", "status": "READING"},
		{"title": "b"},
		{"title": "c", "status": "PAUSED"},
	} {
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/records", body).Code)
	}

	type listBody struct {
		Status  string           `json:"status"`
		Counts  map[string]int64 `json:"counts"`
		Records []recordBody     `json:"records"`
	}

	reading := decode[listBody](t, ts.do(t, http.MethodGet, "/records?status=READING", nil))
	assert.Equal(t, "READING", reading.Status)
	require.Len(t, reading.Records, 1)
	assert.Equal(t, "a", reading.Records[0].Title)
	assert.Equal(t, map[string]int64{"UNREAD": 1, "READING": 1, "COMPLETED": 0, "PAUSED": 1}, reading.Counts)

	fallback := decode[listBody](t, ts.do(t, http.MethodGet, "/records?status=nonsense", nil))
	assert.Equal(t, "UNREAD", fallback.Status)
	require.Len(t, fallback.Records, 1)
	assert.Equal(t, "b", fallback.Records[0].Title)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/records", map[string]any{"title": "Walden"}).Code)

	rec := ts.do(t, http.MethodGet, "/records/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=UTF-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reading-records_20250901_080000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Title,Author,Status"))
	assert.Contains(t, rec.Body.String(), "1,Walden,,未読,0,")
}

func TestImportPreviewAndCommit(t *testing.T) {
	ts := newTestServer(t)

	csv := "ID,Title,Author,Status,Current Page,Total Pages,Summary,Thoughts\n" +
		"1,Dune,Frank Herbert,読書中,120,412,,\n" +
		"2,,Nobody,UNREAD,0,,,\n" +
		"3,Emma,Jane Austen,Bogus,0,,,\n"

	preview := ts.upload(t, "books.csv", csv)
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())

	type previewBody struct {
		Records  []recordBody `json:"records"`
		Count    int          `json:"count"`
		Rejected int          `json:"rejected"`
		CSVData  string       `json:"csv_data"`
	}
	pb := decode[previewBody](t, preview)
	assert.Equal(t, 2, pb.Count)
	assert.Equal(t, 1, pb.Rejected)
	assert.Equal(t, "UNREAD", pb.Records[1].Status)
	require.NotEmpty(t, pb.CSVData)

	n, _ := ts.store.Count(context.Background())
	assert.Zero(t, n, "preview must not persist")

	commit := ts.do(t, http.MethodPost, "/records/import/commit", map[string]string{"csv_data": pb.CSVData})
	require.Equal(t, http.StatusCreated, commit.Code, commit.Body.String())

	type commitBody struct {
		Message string `json:"message"`
		BatchID string `json:"batch_id"`
		Count   int    `json:"count"`
	}
	cb := decode[commitBody](t, commit)
	assert.Equal(t, 2, cb.Count)
	assert.Equal(t, "2 records imported", cb.Message)
	assert.NotEmpty(t, cb.BatchID)

	n, _ = ts.store.Count(context.Background())
	assert.EqualValues(t, 2, n)
}

func TestImportRejections(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.upload(t, "books.txt", "ID,Title\n1,Dune\n").Code, "non csv name")
	assert.Equal(t, http.StatusBadRequest, ts.upload(t, "books.csv", "").Code, "empty file")
	assert.Equal(t, http.StatusBadRequest, ts.upload(t, "books.csv", "ID,Title\n1,\n").Code, "no valid rows")

	bad := ts.do(t, http.MethodPost, "/records/import/commit", map[string]string{"csv_data": "%%%"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	missing := ts.do(t, http.MethodPost, "/records/import/commit", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestImportNearUploadCap(t *testing.T) {
	const limit = 64 << 10
	ts := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.MaxUploadBytes = limit })

	var sb strings.Builder
	sb.WriteString("ID,Title,Author,Status,Current Page,Total Pages\n")
	rows := 0
	for sb.Len() < limit*7/8 {
		rows++
		fmt.Fprintf(&sb, "%d,Book %d,Author %d,UNREAD,0,300\n", rows, rows, rows)
	}

	preview := ts.upload(t, "big.csv", sb.String())
	require.Equal(t, http.StatusOK, preview.Code, preview.Body.String())

	var pb struct {
		CSVData string `json:"csv_data"`
	}
	require.NoError(t, json.Unmarshal(preview.Body.Bytes(), &pb))
	require.Greater(t, len(pb.CSVData), limit, "payload is larger than the raw upload cap")

	commit := ts.do(t, http.MethodPost, "/records/import/commit", map[string]string{"csv_data": pb.CSVData})
	require.Equal(t, http.StatusCreated, commit.Code, commit.Body.String())

	n, _ := ts.store.Count(context.Background())
	assert.EqualValues(t, rows, n)
}

func TestCommitBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.MaxUploadBytes = 1 << 10 })

	oversized := strings.Repeat("A", int(handlers.CommitBodyLimit(1<<10))+1)
	rec := ts.do(t, http.MethodPost, "/records/import/commit", map[string]string{"csv_data": oversized})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestImportRateLimited(t *testing.T) {
	ts := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.ImportBurst = 1
		d.ImportRefillPerMin = 1
	})

	assert.Equal(t, http.StatusOK, ts.upload(t, "a.csv", "ID,Title\n1,Dune\n").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.upload(t, "a.csv", "ID,Title\n1,Dune\n").Code)
}

func TestDeleteAllRestrictedByCIDR(t *testing.T) {
	ts := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/records", map[string]any{"title": "x"}).Code)

	// httptest requests come from 192.0.2.1
	rec := ts.do(t, http.MethodPost, "/settings/delete-all", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/settings/delete-all", nil)
	req.RemoteAddr = "10.0.0.7:40000"
	allowed := httptest.NewRecorder()
	ts.handler.ServeHTTP(allowed, req)
	assert.Equal(t, http.StatusOK, allowed.Code)

	n, _ := ts.store.Count(context.Background())
	assert.Zero(t, n)
}

func TestEnforceHostGlobal(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config, _ *deps.Deps) {
		cfg.AllowedHosts = []string{"books.lan"}
	})

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/records", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Host = "books.lan"
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthzReportsBuildAndBackend(t *testing.T) {
	ts := newTestServer(t, func(_ *config.Config, d *deps.Deps) {
		d.Build = version.Info{Version: "v1.4.0", Commit: "abc1234", BuildDate: "2025-09-01", GoVersion: "go1.25.5"}
		d.Backend = "memory"
	})

	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["store"])
	assert.Equal(t, "v1.4.0", body["version"])
	assert.Equal(t, "abc1234", body["commit"])
	assert.Equal(t, "go1.25.5", body["go_version"])
	assert.Contains(t, body, "uptime_seconds")
}

func TestHealthProbes(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/readyz", nil).Code)

	down := newTestServer(t, func(_ *config.Config, d *deps.Deps) { d.Store = downStore{} })
	rec := down.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, http.StatusOK, down.do(t, http.MethodGet, "/healthz", nil).Code)
}
