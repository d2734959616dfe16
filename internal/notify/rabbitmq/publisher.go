package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jcmexdev/labeeb-storefront/internal/notify"
)

const publishTimeout = 5 * time.Second

var _ notify.Notifier = (*Publisher)(nil)

// Publisher sends OrderPlaced events to the notification queue.
type Publisher struct {
	pool      *ChannelPool
	queueName string
}

func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	return &Publisher{pool: pool, queueName: queueName}
}

func (p *Publisher) Notify(ctx context.Context, ev notify.OrderPlaced) error {
	msg, err := newPublishing(ev)
	if err != nil {
		return err
	}

	ch, err := p.pool.Get()
	if err != nil {
		return err
	}
	defer p.pool.Put(ch)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish order %s: %w", ev.OrderID, err)
	}

	slog.InfoContext(ctx, "order notification published", "order_id", ev.OrderID, "queue", p.queueName)
	return nil
}

// newPublishing encodes ev as a persistent JSON message keyed by order id.
func newPublishing(ev notify.OrderPlaced) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal order %s: %w", ev.OrderID, err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    ev.OrderID,
		Timestamp:    ev.PlacedAt,
		Type:         "order.placed",
		Body:         body,
	}, nil
}
