package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/catalog"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	Catalog catalog.Provider
	Log     *logger.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Post("/products/refresh", h.refresh)
}

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// refresh drops the cached product list; providers without a cache accept it as a no-op.
func (h *CatalogHandler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if c, ok := h.Catalog.(invalidator); ok {
		if err := c.Invalidate(ctx); err != nil {
			writeError(ctx, h.Log, w, apperr.Wrap(apperr.CodeDependency, err, "catalog cache unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// listProducts accepts ?type= to filter by category; "all" or empty means no filter.
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	typ := cart.ProductType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if typ == "all" {
		typ = ""
	}
	if typ != "" && !typ.Valid() {
		writeError(ctx, h.Log, w, apperr.New(apperr.CodeValidation, "unknown product type").
			WithDetails(map[string]any{"type": string(typ), "allowed": cart.ProductTypes()}))
		return
	}

	ps, err := h.Catalog.List(ctx)
	if err != nil {
		writeError(ctx, h.Log, w, apperr.Wrap(apperr.CodeDependency, err, "catalog unavailable"))
		return
	}
	out := make([]cart.Product, 0, len(ps))
	for _, p := range ps {
		if typ == "" || p.Type == typ {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := lookupProduct(ctx, h.Catalog, chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// lookupProduct translates catalog errors into API errors.
func lookupProduct(ctx context.Context, c catalog.Provider, id string) (cart.Product, error) {
	if id == "" {
		return cart.Product{}, apperr.New(apperr.CodeValidation, "product_id is required")
	}
	p, err := c.Get(ctx, id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return cart.Product{}, apperr.Wrap(apperr.CodeNotFound, err, "product not found")
	case err != nil:
		return cart.Product{}, apperr.Wrap(apperr.CodeDependency, err, "catalog unavailable")
	}
	return p, nil
}
