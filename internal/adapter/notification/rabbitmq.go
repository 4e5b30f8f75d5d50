package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/srgjo27/smart_parking/internal/core/domain"
)

// Message is the payload consumed by the mail/SMS gateway.
type Message struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQSender queues notifications on a durable queue behind a circuit
// breaker.
type RabbitMQSender struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	pub       publisher
	queueName string
	cb        *gobreaker.CircuitBreaker
}

func NewRabbitMQSender(amqpURL, queueName string) (*RabbitMQSender, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	sender := newSender(ch, queueName)
	sender.conn = conn
	sender.ch = ch

	return sender, nil
}

func newSender(pub publisher, queueName string) *RabbitMQSender {
	return &RabbitMQSender{
		pub:       pub,
		queueName: queueName,
		cb:        newCircuitBreaker("RabbitMQ-Notifications"),
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

func (s *RabbitMQSender) Send(ctx context.Context, address, content string) error {
	msg := Message{
		ID:        uuid.New().String(),
		Address:   address,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.pub.PublishWithContext(
			ctx,
			"",          // default exchange
			s.queueName, // routing key == queue name
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.CreatedAt,
				Body:         body,
			},
		)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	return err
}

func (s *RabbitMQSender) Close() error {
	if s.ch != nil {
		if err := s.ch.Close(); err != nil {
			return err
		}
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
