package report

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"classtest/internal/app/apiresp"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc reportService
}

type reportService interface {
	SummaryByTest(ctx context.Context, testID int64) (*TestSummary, error)
	ExportSubmissionsExcel(ctx context.Context) ([]byte, error)
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	summary, err := h.svc.SummaryByTest(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	apiresp.WriteOK(w, r, http.StatusOK, summary)
}

func (h *Handler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportSubmissionsExcel(r.Context())
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
