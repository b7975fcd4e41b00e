package submission

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
	svc submissionService
}

type submissionService interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
	List(ctx context.Context) ([]DashboardRow, error)
	GetDetail(ctx context.Context, id int64) (*grading.DetailView, error)
	GetDetailByShareToken(ctx context.Context, token string) (*grading.DetailView, error)
	SetManualPoints(ctx context.Context, id int64, questionIndex int, points float64) (map[string]float64, error)
	SaveReview(ctx context.Context, id int64, grade, comment string) error
	Delete(ctx context.Context, id int64) error
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type submitRequest struct {
	StudentName  string               `json:"student_name"`
	StudentClass string               `json:"student_class"`
	Answers      grading.RawAnswerBag `json:"answers"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	testID, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Submit(r.Context(), SubmitInput{
		TestID:       testID,
		StudentName:  req.StudentName,
		StudentClass: req.StudentClass,
		Answers:      req.Answers,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTestNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, items)
}

func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	view, err := h.svc.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSubmissionNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, view)
}

func (h *Handler) GetByShareToken(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetDetailByShareToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, ErrSubmissionNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, view)
}

type manualPointsRequest struct {
	QuestionIndex int     `json:"question_index"`
	Points        float64 `json:"points"`
}

func (h *Handler) SetManualPoints(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	var req manualPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	merged, err := h.svc.SetManualPoints(r.Context(), id, req.QuestionIndex, req.Points)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrSubmissionNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, map[string]interface{}{"manual_points": merged})
}

type reviewRequest struct {
	Grade   string `json:"grade"`
	Comment string `json:"comment"`
}

func (h *Handler) SaveReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SaveReview(r.Context(), id, req.Grade, req.Comment); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrSubmissionNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, map[string]bool{"saved": true})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrSubmissionNotFound) {
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
