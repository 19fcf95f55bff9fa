package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxBackoff = 30 * time.Second

// StartCheckoutConsumer consumes checkout.finalized until ctx is cancelled,
// writing one structured log record per order.  Broker outages are retried
// with exponential backoff.  Invalid messages are rejected without requeue.
func StartCheckoutConsumer(ctx context.Context, url string, log *slog.Logger) error {
	log = log.With("component", "checkout-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("dial failed", "err", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(checkoutQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(checkoutQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, log); err != nil {
				log.Error("handle message failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, log *slog.Logger) error {
	if err := ValidateCheckoutFinalized(body); err != nil {
		return err
	}
	var ev CheckoutFinalizedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	tickets, merch := 0, 0
	for _, l := range ev.Lines {
		if l.ProductID != "" {
			merch += l.Quantity
		} else {
			tickets += l.Quantity
		}
	}
	log.Info("checkout finalized",
		"order_id", ev.OrderID,
		"owner_id", ev.OwnerID,
		"quick", ev.Quick,
		"payment_method", ev.PaymentMethod,
		"tickets", tickets,
		"merchandise", merch,
		"total", ev.Total,
		"finalized_at", ev.FinalizedAt,
	)
	return nil
}
