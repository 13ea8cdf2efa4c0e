package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/pkg/common"

	"github.com/segmentio/kafka-go"
)

// RecommendationEvent is the payload published when a recommendation is written.
type RecommendationEvent struct {
	EventType      string                 `json:"event_type"`
	Symbol         string                 `json:"symbol"`
	Recommendation *entity.Recommendation `json:"recommendation"`
	Timestamp      time.Time              `json:"timestamp"`
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher publishes recommendation events keyed by symbol.
func NewKafkaPublisher(brokers []string, topic string) EventPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	})
}

func NewKafkaPublisherWithWriter(w MessageWriter) EventPublisher {
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) PublishRecommendationCreated(ctx context.Context, rec *entity.Recommendation) error {
	event := RecommendationEvent{
		EventType:      common.EventRecommendationCreated,
		Symbol:         rec.Symbol,
		Recommendation: rec,
		Timestamp:      time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(rec.Symbol), Value: data}); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher is used when no brokers are configured.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishRecommendationCreated(context.Context, *entity.Recommendation) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
