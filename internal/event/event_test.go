package event

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestDecodeVoteCast(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cast, err := decodeVoteCast([]byte(`{"poll_id":"42","vote":{"id":1,"user_id":2,"option_id":3,"created_at":"now"},"submitted_at":"2025-01-01T00:00:00Z"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cast.PollID != "42" || cast.Vote.OptionID != 3 {
			t.Errorf("unexpected cast: %+v", cast)
		}
	})

	t.Run("not json", func(t *testing.T) {
		_, err := decodeVoteCast([]byte("option-1"))
		if !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("expected ErrMalformedEvent, got %v", err)
		}
	})

	t.Run("missing poll id", func(t *testing.T) {
		_, err := decodeVoteCast([]byte(`{"vote":{"id":1}}`))
		if !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("expected ErrMalformedEvent, got %v", err)
		}
	})
}

func TestReadDelivery(t *testing.T) {
	t.Run("delivers event", func(t *testing.T) {
		ch := make(chan amqp.Delivery, 1)
		ch <- amqp.Delivery{Body: []byte(`{"poll_id":"7"}`)}

		cast, err := readDelivery(context.Background(), ch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cast.PollID != "7" {
			t.Errorf("PollID = %q, want 7", cast.PollID)
		}
	})

	t.Run("closed channel", func(t *testing.T) {
		ch := make(chan amqp.Delivery)
		close(ch)

		_, err := readDelivery(context.Background(), ch)
		if !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := readDelivery(ctx, make(chan amqp.Delivery))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}

func TestNewKafka_NoBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "votes"); err == nil {
		t.Error("expected error for publisher without brokers")
	}
	if _, err := NewKafkaConsumer(nil, "votes", "group"); err == nil {
		t.Error("expected error for consumer without brokers")
	}
}

var (
	_ VotePublisher = (*KafkaPublisher)(nil)
	_ VotePublisher = (*AmqpPublisher)(nil)
	_ VoteConsumer  = (*KafkaConsumer)(nil)
	_ VoteConsumer  = (*AmqpConsumer)(nil)
)
