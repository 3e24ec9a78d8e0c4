package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/checkout"
	"github.com/go-chi/chi/v5"
)

const idempotencyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	Carts   *CartHandler
	Service *checkout.Service
	CSVName string
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.submit)
	r.Post("/checkout/csv", h.downloadCSV)
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, id, store, err := h.Carts.open(w, r)
	if err != nil {
		writeError(ctx, h.Carts.Log, w, err)
		return
	}
	var form checkout.Form
	if err := decodeJSON(r, &form); err != nil {
		writeError(ctx, h.Carts.Log, w, err)
		return
	}

	out, err := h.Service.Submit(ctx, id, store, form, strings.TrimSpace(r.Header.Get(idempotencyHeader)))
	if err != nil {
		writeError(ctx, h.Carts.Log, w, err)
		return
	}
	if !out.Duplicate {
		h.Carts.persist(ctx, id, store)
	}
	writeJSON(w, http.StatusOK, out)
}

// downloadCSV renders the current cart without submitting or clearing it.
func (h *CheckoutHandler) downloadCSV(w http.ResponseWriter, r *http.Request) {
	ctx, _, store, err := h.Carts.open(w, r)
	if err != nil {
		writeError(ctx, h.Carts.Log, w, err)
		return
	}
	var form checkout.Form
	if err := decodeJSON(r, &form); err != nil {
		writeError(ctx, h.Carts.Log, w, err)
		return
	}
	lines := store.Lines()
	if len(lines) == 0 {
		writeError(ctx, h.Carts.Log, w, apperr.New(apperr.CodeValidation, "cart is empty"))
		return
	}
	body, err := checkout.FormatCSV(form.Normalize(), lines)
	if err != nil {
		writeError(ctx, h.Carts.Log, w, apperr.Wrap(apperr.CodeInternal, err, "render csv"))
		return
	}

	name := h.CSVName
	if name == "" {
		name = "samples.csv"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
