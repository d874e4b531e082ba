// Package service provides the publisher that sends chart events to RabbitMQ.
// Publishing never blocks the caller: events are buffered and delivered by
// Run over one long-lived connection.  Delivery failures are logged and the
// event is dropped.
package service

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/iliyamo/exam-seating/internal/queue"
)

// ErrPublisherBusy is returned when the event buffer is full.
var ErrPublisherBusy = errors.New("event buffer full")

// Defaults for NewQueuePublisher.
const (
    DefaultBuffer         = 256
    DefaultPublishTimeout = 5 * time.Second
)

type outbound struct {
    queue string
    body  []byte
    at    time.Time
}

// QueuePublisher publishes chart events as persistent JSON messages on the
// default exchange, one durable queue per event type.  The Publish methods
// only enqueue; Run owns the broker connection and must be running for
// events to leave the process.
type QueuePublisher struct {
    URL            string
    Logger         *zap.Logger
    DialTimeout    time.Duration
    PublishTimeout time.Duration

    pending chan outbound
    conn    *amqp.Connection
    ch      *amqp.Channel
}

// NewQueuePublisher builds a publisher for the broker at url with a
// DefaultBuffer-sized event buffer.
func NewQueuePublisher(url string, logger *zap.Logger) *QueuePublisher {
    return newQueuePublisher(url, logger, DefaultBuffer)
}

func newQueuePublisher(url string, logger *zap.Logger, buffer int) *QueuePublisher {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &QueuePublisher{
        URL:            url,
        Logger:         logger,
        DialTimeout:    q.DialTimeout,
        PublishTimeout: DefaultPublishTimeout,
        pending:        make(chan outbound, buffer),
    }
}

// PublishChartGenerated queues a ChartGeneratedEvent for chart.generated.
func (p *QueuePublisher) PublishChartGenerated(_ context.Context, ev q.ChartGeneratedEvent) error {
    return p.enqueue(q.ChartGeneratedQueue, ev)
}

// PublishPositionExhausted queues a PositionExhaustedEvent for roster.exhausted.
func (p *QueuePublisher) PublishPositionExhausted(_ context.Context, ev q.PositionExhaustedEvent) error {
    return p.enqueue(q.PositionExhaustedQueue, ev)
}

func (p *QueuePublisher) enqueue(queueName string, event any) error {
    body, err := json.Marshal(event)
    if err != nil {
        return err
    }
    select {
    case p.pending <- outbound{queue: queueName, body: body, at: time.Now().UTC()}:
        return nil
    default:
        return ErrPublisherBusy
    }
}

// Pending reports how many events wait for delivery.
func (p *QueuePublisher) Pending() int { return len(p.pending) }

// Run delivers queued events until ctx is cancelled.  The connection is
// opened lazily and re-opened after a failure; an event that cannot be
// delivered is logged and dropped.
func (p *QueuePublisher) Run(ctx context.Context) error {
    defer p.close()
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case m := <-p.pending:
            if err := p.send(ctx, m); err != nil {
                if ctx.Err() != nil {
                    return ctx.Err()
                }
                p.Logger.Warn("rabbitmq: event dropped", zap.String("queue", m.queue), zap.Error(err))
                p.close()
            }
        }
    }
}

func (p *QueuePublisher) send(ctx context.Context, m outbound) error {
    ch, err := p.channel()
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(ctx, p.PublishTimeout)
    defer cancel()
    return ch.PublishWithContext(ctx,
        "",      // default exchange
        m.queue, // routing key = queue name
        false,   // mandatory
        false,   // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            Timestamp:    m.at,
            Body:         m.body,
        },
    )
}

// channel returns the open channel, dialling and declaring both queues when
// there is none.
func (p *QueuePublisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.close()
    conn, err := q.Dial(p.URL, p.DialTimeout)
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    for _, name := range []string{q.ChartGeneratedQueue, q.PositionExhaustedQueue} {
        // durable, not auto-deleted, not exclusive, wait for the broker
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            _ = conn.Close()
            return nil, err
        }
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *QueuePublisher) close() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
