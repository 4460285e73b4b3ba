package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Consumer drains the activity queue and writes one line per event to Out.
type Consumer struct {
    URL string
    Out io.Writer
    Log logrus.FieldLogger
}

// Run connects to the broker, declares the activity queue (durable) and
// consumes until ctx is cancelled.  A dropped connection is retried with
// exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.WithError(err).Warnf("activity-consumer: dial failed; retrying in %s", backoff)
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            backoff = min(backoff*2, 30*time.Second)
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.WithError(err).Warn("activity-consumer: consume loop ended; reconnecting")
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.WithError(err).Warn("activity-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(ActivityQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ActivityQueueName, "", false, false, false, false, nil)
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
            if err := c.Handle(d.Body); err != nil {
                c.Log.WithError(err).Error("activity-consumer: handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends its log line to Out.
func (c *Consumer) Handle(body []byte) error {
    var ev ActivityEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event type missing")
    }
    line := fmt.Sprintf("[%s] %s | user_id=%s | restaurant_id=%s | entity_id=%s",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.UserID, ev.RestaurantID, ev.EntityID)
    if ev.RatingValue != nil {
        line += fmt.Sprintf(" | rating=%.1f", *ev.RatingValue)
    }
    if _, err := io.WriteString(c.Out, line+"\n"); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
