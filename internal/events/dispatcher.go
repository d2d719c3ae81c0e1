// Package events announces server-side data saves on Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/logger"
)

// DefaultTopic receives data-saved events.
const DefaultTopic = "lifetrack.user_data.saved"

// ErrClosed is returned by PublishDataSaved after Close.
var ErrClosed = errors.New("event dispatcher closed")

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Dispatcher queues events in memory and delivers them in batches from a background loop,
// so a slow broker never holds up a save.
type Dispatcher struct {
	writer    messageWriter
	topic     string
	batchSize int
	interval  time.Duration
	log       *logger.Logger

	queue    chan accounts.DataSaved
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	shutdown chan struct{}
}

// NewDispatcher constructs a Dispatcher. Call Start to begin delivery.
func NewDispatcher(writer messageWriter, topic string, interval time.Duration, batchSize int, log *logger.Logger) *Dispatcher {
	if topic == "" {
		topic = DefaultTopic
	}
	if batchSize <= 0 {
		batchSize = 25
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{
		writer:    writer,
		topic:     topic,
		batchSize: batchSize,
		interval:  interval,
		log:       log.With("component", "events"),
		queue:     make(chan accounts.DataSaved, batchSize*8),
		done:      make(chan struct{}),
		shutdown:  make(chan struct{}),
	}
}

// PublishDataSaved enqueues event. A full queue drops the event.
func (d *Dispatcher) PublishDataSaved(_ context.Context, event accounts.DataSaved) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- event:
	default:
		droppedCounter.Inc()
		d.log.Warn("event queue full, dropping", "user_id", event.UserID, "key", event.Key)
	}
	return nil
}

// Start launches the delivery loop. It should be called in a goroutine and returns after
// Close once the queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer func() {
		ticker.Stop()
		close(d.done)
	}()

	batch := make([]accounts.DataSaved, 0, d.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := d.deliver(ctx, batch); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("event delivery failed", "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case event := <-d.queue:
			batch = append(batch, event)
			if len(batch) >= d.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-d.shutdown:
			for {
				select {
				case event := <-d.queue:
					batch = append(batch, event)
				default:
					flush()
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, events []accounts.DataSaved) error {
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		body, err := json.Marshal(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(event.UserID, 10)),
			Value: body,
			Time:  event.SavedAt,
		})
	}
	if err := d.writer.WriteMessages(ctx, d.topic, msgs...); err != nil {
		failedCounter.Add(float64(len(msgs)))
		return err
	}
	deliveredCounter.Add(float64(len(msgs)))
	return nil
}

// Close stops accepting events and signals the loop to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.shutdown)
}

// Wait blocks until the delivery loop has exited.
func (d *Dispatcher) Wait() {
	<-d.done
}
