// Package queue contains the background consumer that listens to the
// booking queues and appends one line per message to booking.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// Consumer drains the booking queues into <logDir>/booking.log.
type Consumer struct {
    url    string
    logDir string
    log    *zap.Logger

    mu sync.Mutex // serialises writes to booking.log
}

// NewConsumer returns a consumer for the broker at url.  A nil logger is
// replaced by a no-op one.
func NewConsumer(url, logDir string, log *zap.Logger) *Consumer {
    if log == nil {
        log = zap.NewNop()
    }
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{url: url, logDir: logDir, log: log.Named("booking-consumer")}
}

// Run connects to RabbitMQ, declares both booking queues (durable) and
// consumes until ctx is cancelled.  Broker failures are retried with an
// exponential backoff capped at 30s; Run only returns once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < maxBackoff {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
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

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set QoS failed", zap.Error(err))
    }

    created, err := c.subscribe(ch, BookingCreatedQueue)
    if err != nil {
        return err
    }
    changed, err := c.subscribe(ch, BookingStatusChangedQueue)
    if err != nil {
        return err
    }
    c.log.Info("consuming", zap.Strings("queues", []string{BookingCreatedQueue, BookingStatusChangedQueue}))

    for {
        var (
            d  amqp.Delivery
            ok bool
        )
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok = <-created:
        case d, ok = <-changed:
        }
        if !ok {
            return errors.New("deliveries channel closed")
        }
        if err := c.handleMessage(d.RoutingKey, d.Body); err != nil {
            c.log.Error("handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
}

func (c *Consumer) subscribe(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return nil, fmt.Errorf("queue declare %s: %w", queue, err)
    }
    msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
    if err != nil {
        return nil, fmt.Errorf("queue consume %s: %w", queue, err)
    }
    return msgs, nil
}

// handleMessage formats one message according to the queue it came from
// and appends it to booking.log.
func (c *Consumer) handleMessage(queue string, body []byte) error {
    var line string
    switch queue {
    case BookingCreatedQueue:
        var ev BookingCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line = fmt.Sprintf("[%s] Booking created | booking_id=%d | code=%s | user_id=%d | event_id=%d | quantity=%d | total=%d cents | status=%s | available_after=%d\n",
            ev.CreatedAt, ev.BookingID, ev.BookingCode, ev.UserID, ev.EventID, ev.Quantity, ev.TotalPriceCents, ev.Status, ev.AvailableAfter)
    case BookingStatusChangedQueue:
        var ev BookingStatusChangedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line = fmt.Sprintf("[%s] Booking status changed | booking_id=%d | status=%s\n",
            ev.ChangedAt, ev.BookingID, ev.Status)
    default:
        return fmt.Errorf("unexpected queue %q", queue)
    }
    return c.appendLine(line)
}

func (c *Consumer) appendLine(line string) error {
    c.mu.Lock()
    defer c.mu.Unlock()

    if err := os.MkdirAll(c.logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.logDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.logDir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
