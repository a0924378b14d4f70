package event

import (
	"context"
	"fmt"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Guizzs26/polls_client/internal/model"
)

type AmqpConsumer struct {
	queue      *amqpQueue
	deliveries <-chan amqp.Delivery
}

func NewAmqpConsumer(url, queue string) (*AmqpConsumer, error) {
	q, err := openAmqpQueue(url, queue)
	if err != nil {
		return nil, err
	}

	msgs, err := q.channel.Consume(
		q.name,
		"",
		true, // auto-ack: a lost event only delays a refresh
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		q.Close()
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	return &AmqpConsumer{queue: q, deliveries: msgs}, nil
}

func (c *AmqpConsumer) ReadMessage(ctx context.Context) (model.VoteCast, error) {
	return readDelivery(ctx, c.deliveries)
}

func (c *AmqpConsumer) Close() error {
	return c.queue.Close()
}

// readDelivery returns io.EOF once the broker closes the delivery channel.
func readDelivery(ctx context.Context, deliveries <-chan amqp.Delivery) (model.VoteCast, error) {
	select {
	case <-ctx.Done():
		return model.VoteCast{}, ctx.Err()
	case d, ok := <-deliveries:
		if !ok {
			return model.VoteCast{}, io.EOF
		}
		return decodeVoteCast(d.Body)
	}
}
