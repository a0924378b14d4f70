package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Guizzs26/polls_client/internal/model"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

/*
Balancer: &kafka.Hash{} keys messages by poll id, so every vote cast on
the same poll lands on the same partition and the relay sees them in order.

RequiredAcks: kafka.RequireAll waits for all in-sync replicas. A lost
event only delays a results refresh, but the CLI publishes one message per
invocation, so the extra latency is irrelevant.

Compression: kafka.Snappy, the events are small JSON documents.
*/
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher: no brokers configured")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}

	return &KafkaPublisher{writer: w}, nil
}

func (kp *KafkaPublisher) Publish(ctx context.Context, cast model.VoteCast) error {
	vb, err := json.Marshal(cast)
	if err != nil {
		return fmt.Errorf("failed to marshal vote cast: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(cast.PollID),
		Value: vb,
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
