package recorder

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-sample-storefront/internal/kafka"
	"github.com/ariefcatur/go-sample-storefront/internal/orders"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Store persists submissions; orders.Repo implements it.
type Store interface {
	RecordSubmission(ctx context.Context, s orders.Submission) (id string, existed bool, err error)
}

// Deduper remembers consumed event ids; redisx.Claims implements it.
type Deduper interface {
	FirstSeen(ctx context.Context, service, eventID string) (bool, error)
	Forget(ctx context.Context, service, eventID string) error
}

type Service struct {
	Store       Store
	Dedup       Deduper
	ServiceName string
	Log         zerolog.Logger
}

// HandleOrderSubmitted is installed as the consumer handler.
func (s *Service) HandleOrderSubmitted(ctx context.Context, m kafkago.Message) error {
	if t, ok := kafkax.HeaderValue(m, "x-event-type"); ok && t != orders.EventOrderSubmitted {
		return nil
	}
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// a poison message would block the partition forever
		s.Log.Error().Err(err).Int64("offset", m.Offset).Msg("undecodable envelope skipped")
		return nil
	}
	if env.EventType != orders.EventOrderSubmitted {
		return nil
	}

	if s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, s.ServiceName, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", env.EventID, err)
		}
		if !first {
			s.Log.Debug().Str("event_id", env.EventID).Msg("duplicate event ignored")
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[orders.OrderSubmittedPayload](env.Payload)
	if err != nil {
		s.Log.Error().Err(err).Str("event_id", env.EventID).Msg("undecodable payload skipped")
		return nil
	}

	id, existed, err := s.Store.RecordSubmission(ctx, orders.SubmissionFromPayload(p))
	if err != nil {
		if s.Dedup != nil {
			if ferr := s.Dedup.Forget(ctx, s.ServiceName, env.EventID); ferr != nil {
				s.Log.Warn().Err(ferr).Str("event_id", env.EventID).Msg("forget dedup key")
			}
		}
		return fmt.Errorf("record submission %s: %w", p.OrderID, err)
	}
	s.Log.Info().
		Str("submission_id", id).
		Str("external_id", p.ExternalID).
		Bool("existed", existed).
		Bool("delivered", p.Delivered).
		Msg("submission recorded")
	return nil
}
