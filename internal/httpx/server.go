package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/catalog"
	"github.com/ariefcatur/go-sample-storefront/internal/checkout"
	kafkax "github.com/ariefcatur/go-sample-storefront/internal/kafka"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/ariefcatur/go-sample-storefront/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the API needs. Events, Metrics and Submissions may be nil.
type Deps struct {
	Registry    *cart.Registry
	Catalog     catalog.Provider
	Submissions SubmissionStore
	Checkout    *checkout.Service
	Events      kafkax.Publisher
	Metrics     *metrics.Storefront
	Gatherer    prometheus.Gatherer
	Log         *logger.Logger
	Service     string
	CSVName     string
	RouteWait   time.Duration
}

func NewRouter(d Deps) *chi.Mux {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.RouteWait <= 0 {
		d.RouteWait = 15 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLog(d.Log), middleware.Recoverer)

	carts := &CartHandler{
		Registry: d.Registry,
		Catalog:  d.Catalog,
		Events:   d.Events,
		Metrics:  d.Metrics,
		Log:      d.Log,
		Service:  d.Service,
	}
	// long-lived, so outside the timeout group
	r.Get("/cart/events", carts.stream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(d.RouteWait))
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		if d.Gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
		}

		(&CatalogHandler{Catalog: d.Catalog, Log: d.Log}).Register(r)
		carts.Register(r)
		(&CheckoutHandler{Carts: carts, Service: d.Checkout, CSVName: d.CSVName}).Register(r)
		if d.Submissions != nil {
			(&SubmissionsHandler{Store: d.Submissions, Log: d.Log}).Register(r)
		}
	})
	return r
}

// requestLog writes one line per request with the chi request id attached to the context logger.
func requestLog(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := middleware.GetReqID(ctx); id != "" {
				ctx = log.WithRequestID(ctx, id)
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Event(ctx).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("request.complete")
		})
	}
}
