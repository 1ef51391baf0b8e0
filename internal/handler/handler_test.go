package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"checkin/internal/checkin"
	"checkin/internal/insight"
	"checkin/internal/notify"
	"checkin/internal/queue"
	"checkin/internal/roster"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(t *testing.T) (*gin.Engine, *checkin.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := quietLogger()

	dir := t.TempDir()
	membersPath := filepath.Join(dir, "members.csv")
	content := "name|domain|type|membershipId|referrer\nAlice|Accounting|Member|M-001|\nBob|Law|Member|M-002|\n"
	if err := os.WriteFile(membersPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write members file: %v", err)
	}
	members := roster.New(logger)
	members.LoadMembers(membersPath)

	hub := notify.NewHub(queue.NewInMemory(64), time.Second, logger)
	svc := checkin.NewService(members, hub, "Chapter Meeting", logger)
	svc.WithClock(func() time.Time {
		return time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	})
	delegate := insight.New("http://127.0.0.1:1", "", "", logger)

	r := gin.New()
	New(svc, members, hub, delegate, logger).Register(r)
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestInsightRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/events",
		`{"name":"Weekly","date":"2025-01-01","onTimeCutoff":"07:00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create event: %d %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, r, http.MethodPost, "/api/checkin",
		`{"name":"Alice","type":"member","currentTime":"2025-01-01T06:45:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("check-in: %d %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/insights/generate",
		`{"eventId":1,"analysisType":"interest"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", rec.Code, rec.Body)
	}
	var report checkin.InsightReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.EventID != 1 || len(report.Insights) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/insights/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list insights: %d", rec.Code)
	}
	var cached []checkin.InsightReport
	if err := json.Unmarshal(rec.Body.Bytes(), &cached); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("cached %d reports, want 1", len(cached))
	}

	rec = doJSON(t, r, http.MethodGet, "/api/insights/99", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("unknown event must list empty: %d %s", rec.Code, rec.Body)
	}
}

func TestAnalysisExportRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/events",
		`{"name":"Weekly","date":"2025-01-01","onTimeCutoff":"07:00"}`)
	doJSON(t, r, http.MethodPost, "/api/checkin",
		`{"name":"Alice","type":"member","currentTime":"2025-01-01T07:30:00Z"}`)

	rec := doJSON(t, r, http.MethodGet, "/api/insights/data-export/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("data export: %d %s", rec.Code, rec.Body)
	}
	var export checkin.AnalysisExport
	if err := json.Unmarshal(rec.Body.Bytes(), &export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if export.EventName != "Weekly" || len(export.AttendanceRecords) != 2 {
		t.Fatalf("unexpected export %+v", export)
	}
	want := checkin.AnalysisSummary{Total: 2, Attended: 1, Late: 1, Absent: 1}
	if export.Summary != want {
		t.Fatalf("summary = %+v, want %+v", export.Summary, want)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/insights/data-export/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown event: %d %s", rec.Code, rec.Body)
	}
	var errBody map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil || errBody["error"] != "Event not found" {
		t.Fatalf("error body = %s", rec.Body)
	}
}
