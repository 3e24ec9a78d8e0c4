package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

// SubmissionStore is the read/update side of recorded orders; orders.Repo implements it.
type SubmissionStore interface {
	GetSubmission(ctx context.Context, id string) (orders.Submission, error)
	ListSubmissions(ctx context.Context, limit int) ([]orders.Submission, error)
	UpdateStatus(ctx context.Context, id string, to orders.Status) error
}

type SubmissionsHandler struct {
	Store SubmissionStore
	Log   *logger.Logger
}

type StatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *SubmissionsHandler) Register(r chi.Router) {
	r.Get("/submissions", h.list)
	r.Get("/submissions/{id}", h.get)
	r.Patch("/submissions/{id}/status", h.updateStatus)
}

func (h *SubmissionsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.Store.ListSubmissions(ctx, limit)
	if err != nil {
		writeError(ctx, h.Log, w, apperr.Wrap(apperr.CodeDependency, err, "list submissions"))
		return
	}
	if out == nil {
		out = []orders.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func (h *SubmissionsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Store.GetSubmission(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, h.Log, w, submissionErr(err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// updateStatus lets staff mark a CSV fallback order as delivered after a manual import.
func (h *SubmissionsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req StatusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Store.UpdateStatus(ctx, id, req.Status); err != nil {
		writeError(ctx, h.Log, w, submissionErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func submissionErr(err error) error {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return apperr.Wrap(apperr.CodeNotFound, err, "submission not found")
	case errors.Is(err, orders.ErrInvalidTransition):
		return apperr.Wrap(apperr.CodeConflict, err, "invalid status transition")
	default:
		return apperr.Wrap(apperr.CodeDependency, err, "submission store unavailable")
	}
}
