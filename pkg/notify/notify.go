// Package notify dispatches best-effort signals to the external notification
// gateway. Callers invoke it after their transaction commits.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/google/uuid"
)

const EventListingApproved = "listing.approved"

// Gateway accepts listing approval signals for email/alert delivery.
type Gateway interface {
	ListingApproved(ctx context.Context, listingID uuid.UUID) error
}

// Event is the payload published for every signal.
type Event struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	ListingID  uuid.UUID `json:"listing_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LogGateway writes signals to the structured log. Used in dev and tests.
type LogGateway struct {
	logg *logger.Logger
}

// NewLogGateway builds a gateway that only logs.
func NewLogGateway(logg *logger.Logger) *LogGateway {
	return &LogGateway{logg: logg}
}

func (g *LogGateway) ListingApproved(ctx context.Context, listingID uuid.UUID) error {
	if g.logg != nil {
		ctx = g.logg.WithFields(ctx, map[string]any{"listing_id": listingID.String(), "event_type": EventListingApproved})
		g.logg.Info(ctx, "notification dispatched")
	}
	return nil
}

type sender interface {
	Send(ctx context.Context, data []byte, attrs map[string]string) error
}

// PubSubGateway publishes signals to a Pub/Sub topic and waits for the ack,
// bounded by timeout.
type PubSubGateway struct {
	sender  sender
	timeout time.Duration
	now     func() time.Time
}

// NewPubSubGateway wraps a topic publisher.
func NewPubSubGateway(publisher *pubsub.Publisher, timeout time.Duration) (*PubSubGateway, error) {
	if publisher == nil {
		return nil, fmt.Errorf("pubsub publisher required")
	}
	return newPubSubGateway(topicSender{publisher: publisher}, timeout), nil
}

func newPubSubGateway(s sender, timeout time.Duration) *PubSubGateway {
	return &PubSubGateway{sender: s, timeout: timeout, now: time.Now}
}

func (g *PubSubGateway) ListingApproved(ctx context.Context, listingID uuid.UUID) error {
	if listingID == uuid.Nil {
		return fmt.Errorf("listing id is required")
	}
	event := Event{
		EventID:    uuid.New(),
		EventType:  EventListingApproved,
		ListingID:  listingID,
		OccurredAt: g.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	attrs := map[string]string{"event_type": event.EventType, "event_id": event.EventID.String()}
	if err := g.sender.Send(ctx, data, attrs); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType, err)
	}
	return nil
}

type topicSender struct {
	publisher *pubsub.Publisher
}

func (s topicSender) Send(ctx context.Context, data []byte, attrs map[string]string) error {
	result := s.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	_, err := result.Get(ctx)
	return err
}
