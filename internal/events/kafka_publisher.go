// Package events publishes settlement notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope wraps every payload so consumers can dispatch on Type.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// KafkaPublisher writes events to a single topic keyed by client id, so all
// events for one client land on the same partition.
type KafkaPublisher struct {
	l     *slog.Logger
	w     messageWriter
	topic string
}

var _ gateways.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(l *slog.Logger, w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{l: l.With("topic", topic), w: w, topic: topic}
}

func (p *KafkaPublisher) PublishOrderCommitted(ctx context.Context, event domain.OrderCommittedEvent) {
	p.publish(ctx, domain.EventOrderCommitted, event.ClientID, event)
}

func (p *KafkaPublisher) PublishDebtSettled(ctx context.Context, event domain.DebtSettledEvent) {
	p.publish(ctx, domain.EventDebtSettled, event.ClientID, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) {
	b, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		p.l.Error(fmt.Sprintf("marshal %s event: %s", eventType, err))
		return
	}

	// The request context may be cancelled as soon as the handler returns.
	err = p.w.WriteMessages(context.WithoutCancel(ctx), kafka.Message{
		Key:   []byte(key),
		Value: b,
		Topic: p.topic,
	})
	if err != nil {
		p.l.Error(fmt.Sprintf("write %s event: %s", eventType, err))
	}
}

func (p *KafkaPublisher) Close() {
	if err := p.w.Close(); err != nil {
		p.l.Error(fmt.Sprintf("close kafka writer: %s", err))
	}
}
