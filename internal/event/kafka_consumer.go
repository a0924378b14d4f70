package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Guizzs26/polls_client/internal/model"
)

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, topic, groupID string) (*KafkaConsumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: no brokers configured")
	}

	rCfg := kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10mb
		MaxWait:  1 * time.Second,
		// A new group only cares about votes from now on: the relay
		// re-fetches full results anyway, history adds nothing.
		StartOffset: kafka.LastOffset,
	}
	r := kafka.NewReader(rCfg)

	return &KafkaConsumer{reader: r}, nil
}

// ReadMessage blocks until an event arrives or ctx is done.
func (kc *KafkaConsumer) ReadMessage(ctx context.Context) (model.VoteCast, error) {
	msg, err := kc.reader.ReadMessage(ctx)
	if err != nil {
		return model.VoteCast{}, err
	}
	return decodeVoteCast(msg.Value)
}

func (kc *KafkaConsumer) Close() error {
	if err := kc.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}

func decodeVoteCast(data []byte) (model.VoteCast, error) {
	var cast model.VoteCast
	if err := json.Unmarshal(data, &cast); err != nil {
		return model.VoteCast{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if cast.PollID == "" {
		return model.VoteCast{}, fmt.Errorf("%w: missing poll_id", ErrMalformedEvent)
	}
	return cast, nil
}
