package consumers

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/rabbitmq"
	"github.com/Performile1/Performile-Version-1-sub000/services"
)

// StartScoreConsumer invalidates and rewarms trust scores when other
// processes (or this one) publish score events. Lets a fleet of instances
// keep their process-local caches honest.
func StartScoreConsumer(ctx context.Context, ch *amqp.Channel, cfg *configs.Config, cache *services.ScoreCache) {
	msgs, err := ch.Consume(
		cfg.ScoreQueue,
		"performile-score", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("failed to register score consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processScoreMessage(ctx, msg, cache)
		}
	}()
}

func processScoreMessage(ctx context.Context, msg amqp.Delivery, cache *services.ScoreCache) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered from panic in score consumer: %v", r)
		}
	}()

	var ev rabbitmq.ScoreEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil || ev.CourierID == 0 {
		log.Printf("invalid score event: %s", msg.Body)
		_ = msg.Nack(false, false) // drop, do not requeue
		return
	}

	cache.Invalidate(ev.CourierID)
	if _, err := cache.Recompute(ctx, ev.CourierID); err != nil {
		log.Printf("score recompute for courier %d failed: %v", ev.CourierID, err)
		_ = msg.Nack(false, true) // retryable, requeue
		return
	}
	_ = msg.Ack(false)
}
