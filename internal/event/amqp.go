package event

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpQueue is the connection, channel and durable queue shared by the
// AMQP publisher and consumer.
type amqpQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	name    string
}

func openAmqpQueue(url, queue string) (*amqpQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	return &amqpQueue{conn: conn, channel: ch, name: queue}, nil
}

func (q *amqpQueue) Close() error {
	if err := q.channel.Close(); err != nil && err != amqp.ErrClosed {
		q.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := q.conn.Close(); err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
