// Package service provides functions to publish domain events to RabbitMQ.
// Publishing is best effort: errors are returned for the caller to log, and
// never interrupt the request flow.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
    "github.com/sony/gobreaker"

    q "github.com/iliyamo/dinewise/internal/queue"
)

// ActivityPublisher publishes ActivityEvent messages to the activity queue
// over one lazily opened connection, reopened after a failure.  After three
// consecutive failures the breaker opens and events are rejected with
// gobreaker.ErrOpenState for 30s instead of dialing a dead broker on every
// request.
type ActivityPublisher struct {
    url string
    log logrus.FieldLogger
    cb  *gobreaker.CircuitBreaker

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewActivityPublisher(url string, log logrus.FieldLogger) *ActivityPublisher {
    st := gobreaker.Settings{
        Name:        "activity-publisher",
        MaxRequests: 1,
        Timeout:     30 * time.Second,
        ReadyToTrip: func(counts gobreaker.Counts) bool {
            return counts.ConsecutiveFailures >= 3
        },
        OnStateChange: func(name string, from, to gobreaker.State) {
            log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
                Warn("rabbitmq: circuit breaker state changed")
        },
    }
    return &ActivityPublisher{url: url, log: log, cb: gobreaker.NewCircuitBreaker(st)}
}

// channel returns an open channel with the queue declared, dialing when
// needed.  Callers hold p.mu.
func (p *ActivityPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.closeLocked()
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(2 * time.Second)})
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(q.ActivityQueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    p.log.WithField("queue", q.ActivityQueueName).Debug("rabbitmq: publisher connected")
    return ch, nil
}

// Publish sends ev as a persistent JSON message.
func (p *ActivityPublisher) Publish(ctx context.Context, ev q.ActivityEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    _, err = p.cb.Execute(func() (interface{}, error) {
        return nil, p.send(ctx, body)
    })
    return err
}

func (p *ActivityPublisher) send(ctx context.Context, body []byte) error {
    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        return fmt.Errorf("rabbitmq connect: %w", err)
    }
    err = ch.PublishWithContext(ctx,
        "",                  // default exchange
        q.ActivityQueueName, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            Timestamp:    time.Now().UTC(),
            Body:         body,
        })
    if err != nil {
        p.closeLocked()
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    return nil
}

// Close releases the broker connection.
func (p *ActivityPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
    return nil
}

func (p *ActivityPublisher) closeLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
