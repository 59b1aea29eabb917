package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type QueueName string

const (
	QueueTermoReminder QueueName = "termo_reminder_queue"
)

const (
	MAX_QUEUE_RETRY = 3
	CONFIRM_TIMEOUT = 10 * time.Second
)

var ErrPublishNacked = errors.New("broker refused the message")

// Publisher is the part of the broker the reminder producer and the retry path need.
type Publisher interface {
	Publish(ctx context.Context, routingKey QueueName, body []byte) error
}

// RabbitMQ owns one connection and one channel in confirm mode. Every
// queue the engine uses is declared durable on connect.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ Publisher = (*RabbitMQ)(nil)

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	r := &RabbitMQ{conn: conn, channel: channel}
	if err := r.setup(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *RabbitMQ) setup() error {
	for _, name := range []QueueName{QueueTermoReminder} {
		// durable, not auto-deleted, not exclusive
		if _, err := r.channel.QueueDeclare(string(name), true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare %s: %w", name, err)
		}
	}

	// Docs: https://www.rabbitmq.com/docs/confirms#publisher-confirms
	if err := r.channel.Confirm(false); err != nil {
		return fmt.Errorf("enable publisher confirms: %w", err)
	}

	return nil
}

func (r *RabbitMQ) Close() error {
	return errors.Join(r.channel.Close(), r.conn.Close())
}

// Publish a persistent JSON message on the default exchange and wait for the
// broker to confirm it, so a reminder reported as queued survives a restart.
func (r *RabbitMQ) Publish(ctx context.Context, routingKey QueueName, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, CONFIRM_TIMEOUT)
	defer cancel()

	confirm, err := r.channel.PublishWithDeferredConfirmWithContext(ctx, "", string(routingKey), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return err
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrPublishNacked
	}

	return nil
}

// Consume with a prefetch of prefetch unacked deliveries, one per worker.
// Docs: https://www.rabbitmq.com/tutorials/tutorial-two-go#fair-dispatch
func (r *RabbitMQ) Consume(queueName QueueName, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch < 1 {
		prefetch = 1
	}
	if err := r.channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	// manual ack, not exclusive
	return r.channel.Consume(string(queueName), "", false, false, false, false, nil)
}
