package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jcmexdev/labeeb-storefront/internal/notify"
)

// HandlerFunc processes one decoded notification. An error rejects the
// message without requeueing it.
type HandlerFunc func(ctx context.Context, ev notify.OrderPlaced) error

// Worker consumes the notification queue on its own channel, one unacked
// message at a time.
type Worker struct {
	id        int
	channel   *amqp.Channel
	queueName string
	handle    HandlerFunc
}

func NewWorker(id int, conn *amqp.Connection, queueName string, handle HandlerFunc) (*Worker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel for worker %d: %w", id, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("rabbitmq: set qos for worker %d: %w", id, err)
	}

	return &Worker{id: id, channel: ch, queueName: queueName, handle: handle}, nil
}

// Start consumes until the channel or connection closes.
func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer w.channel.Close()

	msgs, err := w.channel.Consume(
		w.queueName,
		fmt.Sprintf("notifier-%d", w.id),
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		slog.ErrorContext(ctx, "worker failed to register consumer", "worker", w.id, "error", err)
		return
	}

	slog.InfoContext(ctx, "worker waiting for messages", "worker", w.id)
	for msg := range msgs {
		w.process(ctx, msg)
	}
	slog.InfoContext(ctx, "worker stopped", "worker", w.id)
}

func (w *Worker) process(ctx context.Context, msg amqp.Delivery) {
	var ev notify.OrderPlaced
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		slog.WarnContext(ctx, "dropping malformed notification", "worker", w.id, "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := w.handle(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "notification handler failed", "worker", w.id, "order_id", ev.OrderID, "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := msg.Ack(false); err != nil {
		slog.ErrorContext(ctx, "failed to acknowledge notification", "worker", w.id, "order_id", ev.OrderID, "error", err)
		return
	}
	slog.DebugContext(ctx, "notification processed", "worker", w.id, "order_id", ev.OrderID)
}
