package metrics

import (
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records cart and checkout activity. A nil *Storefront is a no-op.
type Storefront struct {
	notifications *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	webhook       prometheus.Histogram
	sessions      prometheus.Gauge
}

func New(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return nil
	}
	m := &Storefront{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_notifications_total",
			Help: "Cart notifications emitted, by kind.",
		}, []string{"kind"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Checkout submissions, by outcome.",
		}, []string{"outcome"}),
		webhook: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_webhook_duration_seconds",
			Help:    "Latency of spreadsheet webhook calls.",
			Buckets: prometheus.DefBuckets,
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cart_sessions",
			Help: "Cart sessions held in memory.",
		}),
	}
	reg.MustRegister(m.notifications, m.submissions, m.webhook, m.sessions)
	return m
}

func (m *Storefront) ObserveNotifications(ns []cart.Notification) {
	if m == nil {
		return
	}
	for _, n := range ns {
		m.notifications.WithLabelValues(string(n.Kind)).Inc()
	}
}

// IncSubmission outcome is one of delivered, csv_fallback, duplicate, rejected.
func (m *Storefront) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Storefront) ObserveWebhook(d time.Duration) {
	if m == nil {
		return
	}
	m.webhook.Observe(d.Seconds())
}

func (m *Storefront) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
