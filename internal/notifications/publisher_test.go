package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/logger"
)

type stubResult struct {
	id  string
	err error
}

func (r stubResult) Get(context.Context) (string, error) { return r.id, r.err }

type stubTopic struct {
	msgs []*pubsub.Message
	err  error
}

func (s *stubTopic) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	s.msgs = append(s.msgs, msg)
	return stubResult{id: "msg-1", err: s.err}
}

func TestPubSubPublisherEncodesEvent(t *testing.T) {
	topic := &stubTopic{}
	pub := &PubSubPublisher{topic: topic}
	cableID := uuid.New()

	err := pub.PublishQuoteEvent(context.Background(), QuoteEvent{
		Type:      enums.QuoteEventReady,
		CableID:   cableID,
		CableCode: "CBL-1001",
		Status:    enums.CableStatusQuoteReady,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topic.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(topic.msgs))
	}
	msg := topic.msgs[0]
	if msg.Attributes["event_type"] != "quote.ready" || msg.Attributes["cable_id"] != cableID.String() {
		t.Fatalf("unexpected attributes %v", msg.Attributes)
	}

	var decoded QuoteEvent
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID == uuid.Nil || decoded.OccurredAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled, got %+v", decoded)
	}
	if decoded.Status != enums.CableStatusQuoteReady {
		t.Fatalf("unexpected status %q", decoded.Status)
	}
}

func TestPubSubPublisherSurfacesPublishError(t *testing.T) {
	pub := &PubSubPublisher{topic: &stubTopic{err: errors.New("unavailable")}}
	err := pub.PublishQuoteEvent(context.Background(), QuoteEvent{Type: enums.QuoteEventExpired})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPubSubPublisherRejectsUnknownType(t *testing.T) {
	topic := &stubTopic{}
	pub := &PubSubPublisher{topic: topic}
	if err := pub.PublishQuoteEvent(context.Background(), QuoteEvent{Type: "quote.shipped"}); err == nil {
		t.Fatal("expected invalid type error")
	}
	if len(topic.msgs) != 0 {
		t.Fatal("nothing should be published for an invalid event")
	}
}

func TestLogPublisherNeverFails(t *testing.T) {
	buf := &bytes.Buffer{}
	pub := NewLogPublisher(logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf}))
	if err := pub.PublishQuoteEvent(context.Background(), QuoteEvent{Type: enums.QuoteEventRequested, CableCode: "CBL-1001"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("CBL-1001")) {
		t.Fatalf("expected event to be logged, got %s", buf.String())
	}
	var nilPub *LogPublisher
	if err := nilPub.PublishQuoteEvent(context.Background(), QuoteEvent{}); err != nil {
		t.Fatalf("nil publisher should be a no-op: %v", err)
	}
}
