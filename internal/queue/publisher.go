package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kiddeo/kiddeo-core/internal/cart"
)

// Publisher sends finalized orders to the checkout.finalized queue.  It opens
// a connection per publish; checkouts are rare enough that holding a channel
// open is not worth the reconnect handling.
type Publisher struct {
	url   string
	queue string
	log   *slog.Logger
}

func NewPublisher(url string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{url: url, queue: checkoutQueueName, log: log.With("component", "checkout-publisher")}
}

// Encode builds and validates the message body for an order.
func Encode(o cart.Order) ([]byte, error) {
	body, err := json.Marshal(NewCheckoutFinalizedEvent(o))
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	if err := ValidateCheckoutFinalized(body); err != nil {
		return nil, err
	}
	return body, nil
}

// PublishOrder implements cart.OrderPublisher.  The message is persistent and
// the queue durable, so accepted orders survive a broker restart.
func (p *Publisher) PublishOrder(ctx context.Context, o cart.Order) error {
	body, err := Encode(o)
	if err != nil {
		p.log.Error("order rejected by contract", "order_id", o.ID, "err", err)
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("dial failed", "err", err)
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    o.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Error("publish failed", "order_id", o.ID, "err", err)
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug("order published", "order_id", o.ID)
	return nil
}
