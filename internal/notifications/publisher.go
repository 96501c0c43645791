package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/logger"
)

const publishTimeout = 10 * time.Second

// QuoteEvent is the message published when a cable's quote changes.
type QuoteEvent struct {
	ID         uuid.UUID            `json:"id"`
	Type       enums.QuoteEventType `json:"type"`
	CableID    uuid.UUID            `json:"cable_id"`
	CableCode  string               `json:"cable_code"`
	UserID     uuid.UUID            `json:"user_id"`
	Status     enums.CableStatus    `json:"status"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Publisher delivers quote events to whoever notifies customers and the quoting team.
type Publisher interface {
	PublishQuoteEvent(ctx context.Context, event QuoteEvent) error
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

type gcpTopic struct {
	*pubsub.Publisher
}

func (t gcpTopic) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return t.Publisher.Publish(ctx, msg)
}

// PubSubPublisher publishes quote events as JSON with type attributes.
type PubSubPublisher struct {
	topic topicPublisher
	logg  *logger.Logger
}

// NewPubSubPublisher wraps a Pub/Sub topic publisher.
func NewPubSubPublisher(p *pubsub.Publisher, logg *logger.Logger) (*PubSubPublisher, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &PubSubPublisher{topic: gcpTopic{Publisher: p}, logg: logg}, nil
}

func (p *PubSubPublisher) PublishQuoteEvent(ctx context.Context, event QuoteEvent) error {
	msg, err := quoteMessage(event)
	if err != nil {
		return err
	}
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	id, err := p.topic.Publish(publishCtx, msg).Get(publishCtx)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	if p.logg != nil {
		logCtx := p.logg.WithFields(ctx, map[string]any{
			"event_type": event.Type,
			"cable_code": event.CableCode,
			"message_id": id,
		})
		p.logg.Info(logCtx, "quote event published")
	}
	return nil
}

func quoteMessage(event QuoteEvent) (*pubsub.Message, error) {
	if !event.Type.IsValid() {
		return nil, fmt.Errorf("invalid quote event type %q", event.Type)
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal quote event: %w", err)
	}
	return &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": event.Type.String(),
			"event_id":   event.ID.String(),
			"cable_id":   event.CableID.String(),
		},
	}, nil
}

// LogPublisher only logs events. Used when notifications are disabled or no
// project is configured.
type LogPublisher struct {
	logg *logger.Logger
}

func NewLogPublisher(logg *logger.Logger) *LogPublisher {
	return &LogPublisher{logg: logg}
}

func (p *LogPublisher) PublishQuoteEvent(ctx context.Context, event QuoteEvent) error {
	if p == nil || p.logg == nil {
		return nil
	}
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"event_type": event.Type,
		"cable_code": event.CableCode,
	})
	p.logg.Debug(logCtx, "quote event not published (notifications disabled)")
	return nil
}
