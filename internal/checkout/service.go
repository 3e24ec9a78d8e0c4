package checkout

import (
	"context"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/kafka"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
	"github.com/ariefcatur/go-sample-storefront/internal/metrics"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/google/uuid"
)

const (
	MsgDelivered     = "order sent to the spreadsheet"
	MsgNotConfigured = "spreadsheet webhook is not configured; the CSV is available for download"
	MsgDeliveryError = "sending to the spreadsheet failed; the CSV is available for download"
	MsgDuplicate     = "order already submitted"
)

// Claims guards against double submission of the same idempotency key.
type Claims interface {
	ClaimCheckout(ctx context.Context, idemKey, orderID string) (owner string, claimed bool, err error)
	ReleaseCheckout(ctx context.Context, idemKey string) error
}

type Outcome struct {
	OrderID   string `json:"order_id"`
	Delivered bool   `json:"delivered"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message"`
	CSV       string `json:"csv,omitempty"`
	FileName  string `json:"file_name,omitempty"`
}

type Service struct {
	Sender   Sender
	Claims   Claims
	Events   kafka.Publisher
	Metrics  *metrics.Storefront
	Log      *logger.Logger
	Producer string
	FileName string
	Now      func() time.Time
}

// Submit sends the cart and form to the spreadsheet and empties the cart.
// A missing or failing webhook is not an error; the outcome carries the CSV instead.
func (s *Service) Submit(ctx context.Context, sessionID string, store *cart.Store, form Form, idemKey string) (Outcome, error) {
	log := s.logger()
	lines := store.Lines()
	if totalOf(lines) == 0 {
		s.Metrics.IncSubmission("rejected")
		return Outcome{}, apperr.New(apperr.CodeValidation, "cart is empty")
	}
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		s.Metrics.IncSubmission("rejected")
		return Outcome{}, err
	}

	orderID := uuid.NewString()
	// keys are per shopper; two sessions sending the same key are unrelated orders
	if idemKey != "" {
		idemKey = sessionID + ":" + idemKey
	}
	claimed := false
	if idemKey != "" && s.Claims != nil {
		owner, ok, err := s.Claims.ClaimCheckout(ctx, idemKey, orderID)
		switch {
		case err != nil:
			log.Warn(ctx, "idempotency claim failed, submitting without it", err)
		case !ok:
			s.Metrics.IncSubmission("duplicate")
			return Outcome{OrderID: owner, Duplicate: true, Message: MsgDuplicate}, nil
		default:
			claimed = true
		}
	}

	csvText, err := FormatCSV(form, lines)
	if err != nil {
		if claimed {
			if rerr := s.Claims.ReleaseCheckout(ctx, idemKey); rerr != nil {
				log.Warn(ctx, "release idempotency key", rerr)
			}
		}
		return Outcome{}, apperr.Wrap(apperr.CodeInternal, err, "render csv")
	}

	out := Outcome{OrderID: orderID, CSV: csvText, FileName: s.FileName}
	payload := BuildPayload(orderID, form, lines, s.now())
	switch {
	case s.Sender == nil || !s.Sender.Configured():
		out.Message = MsgNotConfigured
	default:
		start := time.Now()
		err := s.Sender.Send(ctx, payload)
		s.Metrics.ObserveWebhook(time.Since(start))
		if err != nil {
			log.Warn(ctx, "spreadsheet webhook failed", err)
			out.Message = MsgDeliveryError
		} else {
			out.Delivered = true
			out.Message = MsgDelivered
		}
	}

	s.publish(ctx, sessionID, idemKey, form, lines, out)
	store.Clear()

	if out.Delivered {
		s.Metrics.IncSubmission("delivered")
	} else {
		s.Metrics.IncSubmission("csv_fallback")
	}
	log.Event(ctx).Str("order_id", orderID).Bool("delivered", out.Delivered).Int("total_items", payload.TotalItems).Msg("order submitted")
	return out, nil
}

func (s *Service) publish(ctx context.Context, sessionID, idemKey string, form Form, lines []cart.Line, out Outcome) {
	if s.Events == nil {
		return
	}
	ext := idemKey
	if ext == "" {
		ext = out.OrderID
	}
	p := orders.OrderSubmittedPayload{
		OrderID:     out.OrderID,
		ExternalID:  ext,
		SessionID:   sessionID,
		AuthorName:  form.AuthorName,
		Email:       form.Email,
		Title:       form.Title,
		PostalCode:  form.PostalCode,
		Address:     form.Address,
		PhoneNumber: form.PhoneNumber,
		Notes:       form.Notes,
		Delivered:   out.Delivered,
	}
	for _, l := range lines {
		p.Items = append(p.Items, orders.SubmittedItem{
			ProductID: l.ProductID,
			Name:      l.Product.Name,
			VariantID: l.VariantID,
			Color:     l.Color,
			Size:      l.Size,
			SKU:       l.SKU(),
			Qty:       l.Quantity,
		})
		p.TotalItems += l.Quantity
	}
	env := orders.NewEnvelope(orders.EventOrderSubmitted, s.Producer, "", sessionID, kafka.MustMarshal(p))
	s.Events.Publish(orders.PartitionKey(out.OrderID), kafka.MustMarshal(env), kafka.EventHeaders(env.EventType, env.EventVersion)...)
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func totalOf(lines []cart.Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
