package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/catalog"
	kafkax "github.com/ariefcatur/go-sample-storefront/internal/kafka"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/ariefcatur/go-sample-storefront/internal/metrics"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CartHandler struct {
	Registry *cart.Registry
	Catalog  catalog.Provider
	Events   kafkax.Publisher
	Metrics  *metrics.Storefront
	Log      *logger.Logger
	Service  string
}

type ItemReq struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  *int   `json:"quantity,omitempty"`
}

func (q ItemReq) selection() cart.Selection {
	return cart.Selection{VariantID: q.VariantID, Color: q.Color, Size: q.Size}
}

type lineView struct {
	cart.Line
	Label string `json:"label"`
	SKU   string `json:"sku,omitempty"`
}

type CartResp struct {
	SessionID     string              `json:"session_id"`
	Lines         []lineView          `json:"lines"`
	Total         int                 `json:"total"`
	LineCount     int                 `json:"line_count"`
	Notifications []cart.Notification `json:"notifications"`
}

func newCartResp(sessionID string, lines []cart.Line, notes []cart.Notification) CartResp {
	resp := CartResp{
		SessionID:     sessionID,
		Lines:         make([]lineView, 0, len(lines)),
		LineCount:     len(lines),
		Notifications: notes,
	}
	if resp.Notifications == nil {
		resp.Notifications = []cart.Notification{}
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, lineView{Line: l, Label: l.Label(), SKU: l.SKU()})
		resp.Total += l.Quantity
	}
	return resp
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items", h.setQuantity)
	r.Delete("/cart/items", h.removeItem)
	r.Delete("/cart", h.clearCart)
	r.Delete("/cart/session", h.endSession)
}

// open resolves the caller's session and its store, echoing the session back.
func (h *CartHandler) open(w http.ResponseWriter, r *http.Request) (context.Context, string, *cart.Store, error) {
	id, minted := sessionID(r)
	echoSession(w, id, minted)
	ctx := h.Log.WithSessionID(r.Context(), id)
	store, err := h.Registry.Open(ctx, id)
	if err != nil {
		return ctx, id, nil, apperr.Wrap(apperr.CodeDependency, err, "cart unavailable")
	}
	h.Metrics.SetSessions(h.Registry.Len())
	return ctx, id, store, nil
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	// a brand-new session has nothing to show; don't allocate a store for it
	if id, minted := sessionID(r); minted {
		echoSession(w, id, minted)
		writeJSON(w, http.StatusOK, newCartResp(id, nil, nil))
		return
	}
	ctx, id, store, err := h.open(w, r)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResp(id, store.Lines(), nil))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, id, store, err := h.open(w, r)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	var req ItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	p, err := h.product(ctx, req.ProductID)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	sel, err := resolveSelection(p, req.selection())
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	h.finish(ctx, w, id, store, store.Add(p, sel))
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, id, store, err := h.open(w, r)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	var req ItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	if req.Quantity == nil {
		writeError(ctx, h.Log, w, apperr.New(apperr.CodeValidation, "quantity is required"))
		return
	}

	// A product that left the catalog can still be updated or removed by id.
	ref := cart.RefID(req.ProductID)
	sel := req.selection()
	p, err := h.product(ctx, req.ProductID)
	switch {
	case err == nil && *req.Quantity > 0:
		if sel, err = resolveSelection(p, sel); err != nil {
			writeError(ctx, h.Log, w, err)
			return
		}
		ref = cart.RefProduct(p)
	case err == nil:
		ref = cart.RefProduct(p)
	case apperr.CodeOf(err) != apperr.CodeNotFound:
		writeError(ctx, h.Log, w, err)
		return
	}
	h.finish(ctx, w, id, store, store.SetQuantity(ref, sel, *req.Quantity))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, id, store, err := h.open(w, r)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	q := r.URL.Query()
	req := ItemReq{
		ProductID: q.Get("product_id"),
		VariantID: q.Get("variant_id"),
		Color:     q.Get("color"),
		Size:      q.Get("size"),
	}
	if req.ProductID == "" {
		writeError(ctx, h.Log, w, apperr.New(apperr.CodeValidation, "product_id is required"))
		return
	}
	h.finish(ctx, w, id, store, store.Remove(req.ProductID, req.selection()))
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, id, store, err := h.open(w, r)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	h.finish(ctx, w, id, store, store.Clear())
}

// endSession forgets the cart entirely and expires the cookie.
func (h *CartHandler) endSession(w http.ResponseWriter, r *http.Request) {
	id, minted := sessionID(r)
	ctx := h.Log.WithSessionID(r.Context(), id)
	if !minted {
		if err := h.Registry.Drop(ctx, id); err != nil {
			writeError(ctx, h.Log, w, apperr.Wrap(apperr.CodeDependency, err, "cart unavailable"))
			return
		}
		h.Metrics.SetSessions(h.Registry.Len())
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) product(ctx context.Context, productID string) (cart.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return lookupProduct(ctx, h.Catalog, productID)
}

// finish persists the snapshot, publishes CartChanged and writes the cart response.
func (h *CartHandler) finish(ctx context.Context, w http.ResponseWriter, id string, store *cart.Store, res cart.Result) {
	if res.Changed {
		h.persist(ctx, id, store)
	}
	h.Metrics.ObserveNotifications(res.Notifications)
	if res.Changed || len(res.Notifications) > 0 {
		h.publishChanged(ctx, id, res)
	}
	writeJSON(w, http.StatusOK, newCartResp(id, res.Lines, res.Notifications))
}

// persist is best effort; the in-memory store stays authoritative.
func (h *CartHandler) persist(ctx context.Context, id string, store *cart.Store) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := h.Registry.Save(sctx, id, store); err != nil {
		h.Log.Warn(ctx, "cart snapshot save failed", err)
	}
}

func (h *CartHandler) publishChanged(ctx context.Context, id string, res cart.Result) {
	if h.Events == nil {
		return
	}
	p := orders.CartChangedPayload{SessionID: id, LineCount: len(res.Lines)}
	for _, l := range res.Lines {
		p.Total += l.Quantity
	}
	for _, n := range res.Notifications {
		p.Notifications = append(p.Notifications, orders.CartNotice{
			Kind:         string(n.Kind),
			ProductLabel: n.ProductLabel,
			Quantity:     n.Quantity,
		})
	}
	env := orders.NewEnvelope(orders.EventCartChanged, h.Service, middleware.GetReqID(ctx), id, kafkax.MustMarshal(p))
	h.Events.Publish(orders.PartitionKey(id), kafkax.MustMarshal(env), kafkax.EventHeaders(env.EventType, env.EventVersion)...)
}
