package rabbitmq

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
)

// ScoreEvent announces that a courier's underlying data changed and its
// cached trust score is stale.
type ScoreEvent struct {
	CourierID uint   `json:"courierId"`
	Reason    string `json:"reason"` // order_delivered | order_failed | review_created | review_moderated
}

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Cfg     *configs.Config
}

func NewRabbitMQ(cfg *configs.Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Channel: ch, Cfg: cfg}, nil
}

func (r *RabbitMQ) SetupQueues() error {
	if err := r.Channel.ExchangeDeclare(
		r.Cfg.ScoreExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := r.Channel.QueueDeclare(
		r.Cfg.ScoreQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return r.Channel.QueueBind(
		r.Cfg.ScoreQueue,
		"",
		r.Cfg.ScoreExchange,
		false,
		nil,
	)
}

// PublishScoreEvent is nil-safe: when rabbit is not configured the publisher
// is nil and events are simply skipped (the cache was already invalidated
// in-process).
func (r *RabbitMQ) PublishScoreEvent(ev ScoreEvent) error {
	if r == nil {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return r.Channel.Publish(
		r.Cfg.ScoreExchange,
		"",
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (r *RabbitMQ) Close() {
	if r == nil {
		return
	}
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
}
