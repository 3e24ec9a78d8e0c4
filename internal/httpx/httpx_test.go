package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/catalog"
	"github.com/ariefcatur/go-sample-storefront/internal/checkout"
	"github.com/ariefcatur/go-sample-storefront/internal/metrics"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const session = "5b0f3c52-7a5e-4b0a-9d53-0c6a4c1b2f10"

type capturePublisher struct {
	msgs [][]byte
}

func (c *capturePublisher) Publish(_, value []byte, _ ...kafka.Header) {
	c.msgs = append(c.msgs, value)
}

type harness struct {
	router http.Handler
	events *capturePublisher
	reg    *cart.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	promReg := prometheus.NewRegistry()
	h := &harness{
		events: &capturePublisher{},
		reg:    cart.NewRegistry(nil, zerolog.Nop()),
	}
	h.router = NewRouter(Deps{
		Registry: h.reg,
		Catalog:  catalog.Seed(),
		Checkout: &checkout.Service{},
		Events:   h.events,
		Metrics:  metrics.New(promReg),
		Gatherer: promReg,
		Service:  "storefront-api",
		CSVName:  "samples.csv",
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(SessionHeader, session)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResp {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp CartResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func tshirt(variant string) ItemReq {
	return ItemReq{ProductID: "1", VariantID: variant, Color: "Black", Size: "M"}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListProducts(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Products []cart.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Products, 7)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/products/99", nil).Code)
}

func TestAddUntilLimited(t *testing.T) {
	h := newHarness(t)

	first := decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	assert.Equal(t, session, first.SessionID)
	require.Len(t, first.Notifications, 1)
	assert.Equal(t, cart.KindAdded, first.Notifications[0].Kind)
	assert.Equal(t, "Character T-shirt (Black / M)", first.Notifications[0].ProductLabel)

	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	third := decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	assert.Equal(t, 2, third.Total)
	assert.Equal(t, 1, third.LineCount)
	require.Len(t, third.Notifications, 1)
	assert.Equal(t, cart.KindLimited, third.Notifications[0].Kind)
	require.Len(t, third.Lines, 1)
	assert.Equal(t, "TS-BL-M", third.Lines[0].SKU)

	require.Len(t, h.events.msgs, 3)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(h.events.msgs[2], &env))
	assert.Equal(t, orders.EventCartChanged, env.EventType)
	var p orders.CartChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, session, p.SessionID)
	assert.Equal(t, 2, p.Total)
}

func TestAddUnknownProduct(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/cart/items", ItemReq{ProductID: "99"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, h.events.msgs)
}

func TestSetQuantityAndRemove(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))

	qty := 5
	req := tshirt("1-5")
	req.Quantity = &qty
	resp := decodeCart(t, h.do(t, http.MethodPut, "/cart/items", req))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, cart.KindLimited, resp.Notifications[0].Kind)
	assert.Equal(t, cart.KindUpdated, resp.Notifications[1].Kind)

	resp = decodeCart(t, h.do(t, http.MethodDelete, "/cart/items?product_id=1&variant_id=1-5&color=Black&size=M", nil))
	assert.Equal(t, 0, resp.Total)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, cart.KindRemoved, resp.Notifications[0].Kind)
}

func TestSetQuantityRequiresQuantity(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPut, "/cart/items", tshirt("1-5"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestClearCart(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	resp := decodeCart(t, h.do(t, http.MethodDelete, "/cart", nil))
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Notifications)
}

func TestSessionMintedWhenMissing(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(SessionHeader)
	assert.NotEmpty(t, id)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookie+"="+id)
}

func TestSessionFromCookie(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, 1, decodeCart(t, rec).Total)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func validForm() checkout.Form {
	return checkout.Form{
		AuthorName:  "Aki",
		Email:       "aki@example.com",
		Title:       "Night Shift",
		PostalCode:  "100-0001",
		Address:     "Chiyoda 1-1",
		PhoneNumber: "03-0000-0000",
	}
}

func TestCheckoutFallsBackToCSV(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))

	rec := h.do(t, http.MethodPost, "/checkout", validForm())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out checkout.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Delivered)
	assert.Equal(t, checkout.MsgNotConfigured, out.Message)
	assert.Contains(t, out.CSV, "Character T-shirt (Black/M) - 1x [SKU: TS-BL-M]")

	assert.Equal(t, 0, decodeCart(t, h.do(t, http.MethodGet, "/cart", nil)).Total)
}

func TestCheckoutRejectsEmptyCartAndBadForm(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/checkout", validForm())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart is empty")

	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	form := validForm()
	form.Email = "nope"
	rec = h.do(t, http.MethodPost, "/checkout", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"email": "must be a valid email address"}, body.Error.Details)
}

func TestCheckoutCSVDownload(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))

	rec := h.do(t, http.MethodPost, "/checkout/csv", validForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "samples.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Author,Email,Title"))

	assert.Equal(t, 1, decodeCart(t, h.do(t, http.MethodGet, "/cart", nil)).Total)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	rec := h.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cart_notifications_total{kind="added"} 1`)
}

func TestEndSessionDropsCart(t *testing.T) {
	h := newHarness(t)
	decodeCart(t, h.do(t, http.MethodPost, "/cart/items", tshirt("1-5")))
	require.Equal(t, 1, h.reg.Len())

	rec := h.do(t, http.MethodDelete, "/cart/session", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, h.reg.Len())
	assert.Equal(t, 0, decodeCart(t, h.do(t, http.MethodGet, "/cart", nil)).Total)
}

func TestRefreshStaticCatalog(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPost, "/products/refresh", nil).Code)
}

func TestAnonymousCartReadDoesNotAllocate(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(SessionHeader))
	}
	assert.Equal(t, 0, h.reg.Len())
}

func TestAddRejectsInvalidSelection(t *testing.T) {
	cases := []struct {
		name  string
		req   ItemReq
		field string
	}{
		{"unknown variant", ItemReq{ProductID: "1", VariantID: "does-not-exist", Color: "Purple", Size: "XXXL"}, "variant_id"},
		{"missing variant", ItemReq{ProductID: "1", Color: "Black", Size: "M"}, "variant_id"},
		{"mismatched color", ItemReq{ProductID: "1", VariantID: "1-5", Color: "White", Size: "M"}, "color"},
		{"options on plain product", ItemReq{ProductID: "7", Color: "Red"}, "selection"},
		{"variant on free-form product", ItemReq{ProductID: "5", VariantID: "5-1"}, "variant_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			rec := h.do(t, http.MethodPost, "/cart/items", tc.req)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var body errorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error.Details, tc.field)
			assert.Empty(t, h.events.msgs)
		})
	}
}

func TestAddFillsSelectionFromVariant(t *testing.T) {
	h := newHarness(t)
	resp := decodeCart(t, h.do(t, http.MethodPost, "/cart/items", ItemReq{ProductID: "1", VariantID: "1-5"}))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Black", resp.Lines[0].Color)
	assert.Equal(t, "M", resp.Lines[0].Size)
	assert.Equal(t, "TS-BL-M", resp.Lines[0].SKU)
}

func TestSetQuantityRejectsInvalidSelection(t *testing.T) {
	h := newHarness(t)
	qty := 1
	rec := h.do(t, http.MethodPut, "/cart/items", ItemReq{ProductID: "1", VariantID: "nope", Quantity: &qty})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, decodeCart(t, h.do(t, http.MethodGet, "/cart", nil)).Total)
}

func TestListProductsByType(t *testing.T) {
	h := newHarness(t)
	list := func(query string) (int, []cart.Product) {
		rec := h.do(t, http.MethodGet, "/products"+query, nil)
		var body struct {
			Products []cart.Product `json:"products"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return rec.Code, body.Products
	}

	code, ps := list("?type=mug")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, ps, 1)
	assert.Equal(t, cart.TypeMug, ps[0].Type)

	code, ps = list("?type=all")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, ps, 7)

	code, _ = list("?type=spaceship")
	assert.Equal(t, http.StatusBadRequest, code)
}
