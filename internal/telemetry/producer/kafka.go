// Package producer publishes telemetry events to Kafka.
package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"wtrfll/server/internal/telemetry"
)

// KafkaSink publishes events to a Kafka topic, keyed by session id so one
// session's events stay ordered within a partition.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink returns a sink writing to topic on the given brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish writes one event.
func (s *KafkaSink) Publish(ctx context.Context, e *telemetry.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.SessionID),
		Value: value,
	})
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
