package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"classtest/internal/grading"

	"github.com/go-chi/chi/v5"
)

type mockQuizService struct {
	createTestFn func(ctx context.Context, in CreateTestInput) (*TestRecord, error)
	listTestsFn  func(ctx context.Context) ([]TestRecord, error)
	getTestFn    func(ctx context.Context, id int64) (*grading.Test, error)
	deleteTestFn func(ctx context.Context, id int64) error
}

func (m *mockQuizService) CreateTest(ctx context.Context, in CreateTestInput) (*TestRecord, error) {
	if m.createTestFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.createTestFn(ctx, in)
}

func (m *mockQuizService) ListTests(ctx context.Context) ([]TestRecord, error) {
	if m.listTestsFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.listTestsFn(ctx)
}

func (m *mockQuizService) GetTest(ctx context.Context, id int64) (*grading.Test, error) {
	if m.getTestFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.getTestFn(ctx, id)
}

func (m *mockQuizService) DeleteTest(ctx context.Context, id int64) error {
	if m.deleteTestFn == nil {
		return errors.New("not implemented")
	}
	return m.deleteTestFn(ctx, id)
}

func newTestRouter(svc quizService, isTeacher bool) http.Handler {
	h := &Handler{svc: svc, isTeacher: func(*http.Request) bool { return isTeacher }}
	r := chi.NewRouter()
	r.Get("/api/v1/tests", h.List)
	r.Post("/api/v1/tests", h.Create)
	r.Get("/api/v1/tests/{id}", h.Get)
	r.Delete("/api/v1/tests/{id}", h.Delete)
	return r
}

func sampleTest() *grading.Test {
	return &grading.Test{
		ID:    4,
		Title: "History",
		Questions: []grading.Question{
			{Text: "Pick", Type: grading.TypeSingle, Options: []string{"a", "b"}, Correct: json.RawMessage(`1`)},
		},
	}
}

func TestGetTestStripsAnswerKeysForStudents(t *testing.T) {
	svc := &mockQuizService{
		getTestFn: func(ctx context.Context, id int64) (*grading.Test, error) {
			return sampleTest(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tests/4", nil)
	w := httptest.NewRecorder()
	newTestRouter(svc, false).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte(`"correct"`)) {
		t.Fatalf("student view must not leak the answer key: %s", w.Body.String())
	}
}

func TestGetTestKeepsAnswerKeysForTeacher(t *testing.T) {
	svc := &mockQuizService{
		getTestFn: func(ctx context.Context, id int64) (*grading.Test, error) {
			return sampleTest(), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tests/4", nil)
	w := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(w, req)

	if !bytes.Contains(w.Body.Bytes(), []byte(`"correct"`)) {
		t.Fatalf("teacher view should include the answer key: %s", w.Body.String())
	}
}

func TestGetTestNotFound(t *testing.T) {
	svc := &mockQuizService{
		getTestFn: func(ctx context.Context, id int64) (*grading.Test, error) {
			return nil, ErrTestNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tests/123", nil)
	w := httptest.NewRecorder()
	newTestRouter(svc, false).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateTestRejectsInvalidQuestions(t *testing.T) {
	svc := &mockQuizService{
		createTestFn: func(ctx context.Context, in CreateTestInput) (*TestRecord, error) {
			return nil, ErrInvalidInput
		},
	}

	body := bytes.NewBufferString(`{"title":"x","questions":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tests", body)
	w := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateTest(t *testing.T) {
	svc := &mockQuizService{
		createTestFn: func(ctx context.Context, in CreateTestInput) (*TestRecord, error) {
			if in.Title != "Biology" || len(in.Questions) != 1 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &TestRecord{ID: 1, Title: in.Title, QuestionCount: 1}, nil
		},
	}

	body := bytes.NewBufferString(`{"title":"Biology","questions":[{"text":"q","type":"single","options":["a","b"],"correct":0}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tests", body)
	w := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteTestHandler(t *testing.T) {
	svc := &mockQuizService{
		deleteTestFn: func(ctx context.Context, id int64) error {
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tests/2", nil)
	w := httptest.NewRecorder()
	newTestRouter(svc, true).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
