package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"classtest/internal/app/apiresp"
	"classtest/internal/grading"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc       quizService
	isTeacher func(r *http.Request) bool
}

type quizService interface {
	CreateTest(ctx context.Context, in CreateTestInput) (*TestRecord, error)
	ListTests(ctx context.Context) ([]TestRecord, error)
	GetTest(ctx context.Context, id int64) (*grading.Test, error)
	DeleteTest(ctx context.Context, id int64) error
}

// NewHandler wires the test authoring routes. isTeacher decides whether a
// GET returns the full definition or the student view with answer keys
// stripped.
func NewHandler(svc *Service, isTeacher func(r *http.Request) bool) *Handler {
	if isTeacher == nil {
		isTeacher = func(*http.Request) bool { return false }
	}
	return &Handler{svc: svc, isTeacher: isTeacher}
}

type createTestRequest struct {
	Title     string             `json:"title"`
	Questions []grading.Question `json:"questions"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.svc.CreateTest(r.Context(), CreateTestInput{
		Title:     req.Title,
		Questions: req.Questions,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, rec)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTests(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	t, err := h.svc.GetTest(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if !h.isTeacher(r) {
		t.Questions = grading.StripAnswerKeys(t.Questions)
	}
	apiresp.WriteOK(w, r, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	if err := h.svc.DeleteTest(r.Context(), id); err != nil {
		if errors.Is(err, ErrTestNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, map[string]bool{"deleted": true})
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
