// Package notify consumes order lifecycle events and maintains per-user
// notification feeds in Redis, so buyers and sellers can poll what happened
// to their orders without hitting the API database.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-marketplace-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         *slog.Logger
}

// Notification is one feed entry, newest first in the user's list.
type Notification struct {
	OrderID    string        `json:"order_id"`
	Event      string        `json:"event"`
	Status     market.Status `json:"status,omitempty"`
	TotalCents int64         `json:"total_cents"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Recipient picks who gets told about an event: always the counterparty of
// the actor who triggered it. Buyers act on created/received/confirmed/
// cancelled, sellers on acknowledged/shipped.
func Recipient(eventType, buyerID, sellerID string) string {
	switch eventType {
	case market.EventOrderAcknowledged, market.EventOrderShipped:
		return buyerID
	default:
		return sellerID
	}
}

// HandleOrderEvent is the consumer handler for both order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via event id; consuming is at-least-once
	key := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	fresh, err := redisx.MarkOnce(ctx, s.Redis, key, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	var (
		userID string
		note   Notification
	)
	switch env.EventType {
	case market.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[market.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		userID = p.SellerID
		note = Notification{
			OrderID:    p.OrderID,
			Event:      env.EventType,
			Status:     market.StatusCreated,
			TotalCents: p.TotalCents,
			OccurredAt: env.OccurredAt,
		}
	case market.EventOrderAcknowledged, market.EventOrderShipped,
		market.EventOrderReceived, market.EventOrderConfirmed, market.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[market.OrderStatusPayload](env.Payload)
		if err != nil {
			return err
		}
		userID = Recipient(env.EventType, p.BuyerID, p.SellerID)
		note = Notification{
			OrderID:    p.OrderID,
			Event:      env.EventType,
			Status:     p.Status,
			TotalCents: p.TotalCents,
			OccurredAt: env.OccurredAt,
		}
	default:
		return nil // unknown event, skip
	}

	if err := s.push(ctx, userID, note); err != nil {
		return err
	}
	s.Log.Info("notification recorded", "user_id", userID, "order_id", note.OrderID, "event", note.Event)
	return nil
}

func (s *Service) push(ctx context.Context, userID string, note Notification) error {
	feed := fmt.Sprintf(redisx.KeyUserFeed, userID)
	pipe := s.Redis.TxPipeline()
	pipe.LPush(ctx, feed, kafkax.MustMarshal(note))
	pipe.LTrim(ctx, feed, 0, redisx.FeedMax-1)
	pipe.Expire(ctx, feed, redisx.TTLFeed)
	_, err := pipe.Exec(ctx)
	return err
}
