package service

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/event-ticketing/internal/queue"
)

// BookingPublisher publishes booking events to RabbitMQ through the default
// exchange.  The connection is opened lazily and reused; after any publish
// error it is dropped so the next call dials again.  Messages are
// persistent and the queues durable.
type BookingPublisher struct {
    url string
    log *zap.Logger

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewBookingPublisher(url string, log *zap.Logger) *BookingPublisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &BookingPublisher{url: url, log: log.Named("rabbitmq")}
}

func (p *BookingPublisher) PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error {
    return p.publish(ctx, queue.BookingCreatedQueue, ev)
}

func (p *BookingPublisher) PublishBookingStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error {
    return p.publish(ctx, queue.BookingStatusChangedQueue, ev)
}

func (p *BookingPublisher) publish(ctx context.Context, queueName string, v any) error {
    pub, err := newPublishing(v, time.Now().UTC())
    if err != nil {
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        p.log.Warn("connect failed", zap.Error(err))
        return err
    }
    if err := ch.PublishWithContext(ctx,
        "",        // default exchange
        queueName, // routing key = queue name
        false,     // mandatory
        false,     // immediate
        pub,
    ); err != nil {
        p.log.Warn("publish failed", zap.String("queue", queueName), zap.Error(err))
        p.reset()
        return err
    }
    return nil
}

// channel returns the cached channel, dialing and declaring the queues
// when there is none.  p.mu must be held.
func (p *BookingPublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()

    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    for _, name := range []string{queue.BookingCreatedQueue, queue.BookingStatusChangedQueue} {
        // durable, not auto-deleted, not exclusive, wait for the broker
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            _ = conn.Close()
            return nil, fmt.Errorf("queue declare %s: %w", name, err)
        }
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *BookingPublisher) reset() {
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// Close releases the broker connection, if any.
func (p *BookingPublisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn == nil {
        return nil
    }
    err := p.conn.Close()
    p.conn, p.ch = nil, nil
    if errors.Is(err, amqp.ErrClosed) {
        return nil
    }
    return err
}

func newPublishing(v any, now time.Time) (amqp.Publishing, error) {
    body, err := json.Marshal(v)
    if err != nil {
        return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    uuid.NewString(),
        Timestamp:    now,
        Body:         body,
    }, nil
}
