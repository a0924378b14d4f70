package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Guizzs26/polls_client/internal/model"
)

type AmqpPublisher struct {
	queue *amqpQueue
	mu    sync.Mutex // amqp channels are not safe for concurrent publishing
}

func NewAmqpPublisher(url, queue string) (*AmqpPublisher, error) {
	q, err := openAmqpQueue(url, queue)
	if err != nil {
		return nil, err
	}
	return &AmqpPublisher{queue: q}, nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, cast model.VoteCast) error {
	body, err := json.Marshal(cast)
	if err != nil {
		return fmt.Errorf("failed to marshal vote cast: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.queue.channel.PublishWithContext(ctx,
		"",
		p.queue.name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to rabbitmq: %w", err)
	}
	return nil
}

func (p *AmqpPublisher) Close() error {
	return p.queue.Close()
}
