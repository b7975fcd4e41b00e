package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type mockReportService struct {
	summaryFn func(ctx context.Context, testID int64) (*TestSummary, error)
	exportFn  func(ctx context.Context) ([]byte, error)
}

func (m *mockReportService) SummaryByTest(ctx context.Context, testID int64) (*TestSummary, error) {
	if m.summaryFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.summaryFn(ctx, testID)
}

func (m *mockReportService) ExportSubmissionsExcel(ctx context.Context) ([]byte, error) {
	if m.exportFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.exportFn(ctx)
}

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/reports/tests/{id}/summary", h.Summary)
	r.Get("/api/v1/reports/submissions.xlsx", h.ExportExcel)
	return r
}

func TestSummaryHandler(t *testing.T) {
	avg := 4.5
	mock := &mockReportService{
		summaryFn: func(ctx context.Context, testID int64) (*TestSummary, error) {
			if testID != 7 {
				t.Fatalf("expected test id 7, got %d", testID)
			}
			return &TestSummary{TestID: 7, Title: "Algebra", Participants: 3, Reviewed: 1, AverageGrade: &avg}, nil
		},
	}
	r := newTestRouter(&Handler{svc: mock})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/tests/7/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var env struct {
		OK   bool        `json:"ok"`
		Data TestSummary `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.OK || env.Data.Participants != 3 || env.Data.Title != "Algebra" {
		t.Fatalf("unexpected payload: %+v", env.Data)
	}
}

func TestSummaryHandlerTestNotFound(t *testing.T) {
	mock := &mockReportService{
		summaryFn: func(ctx context.Context, testID int64) (*TestSummary, error) {
			return nil, ErrTestNotFound
		},
	}
	r := newTestRouter(&Handler{svc: mock})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/tests/99/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSummaryHandlerInvalidID(t *testing.T) {
	r := newTestRouter(&Handler{svc: &mockReportService{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/tests/abc/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestExportExcelHandler(t *testing.T) {
	payload := []byte("PK\x03\x04fake")
	mock := &mockReportService{
		exportFn: func(ctx context.Context) ([]byte, error) {
			return payload, nil
		},
	}
	r := newTestRouter(&Handler{svc: mock})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/submissions.xlsx", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="submissions.xlsx"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Fatalf("body does not match exported bytes")
	}
}
