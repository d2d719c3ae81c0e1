package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultBatchTimeout bounds how long the kafka writer holds a partial batch. The dispatcher
// already batches, so the writer flushes quickly.
const DefaultBatchTimeout = 50 * time.Millisecond

// KafkaProducer is the messageWriter behind the dispatcher. It publishes user_data.saved
// events, hashing the message key (the user id) so one user's saves stay on one partition
// and arrive in order.
type KafkaProducer struct {
	brokers      []string
	batchTimeout time.Duration

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// ProducerOption configures a KafkaProducer.
type ProducerOption func(*KafkaProducer)

// WithBatchTimeout overrides DefaultBatchTimeout.
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(p *KafkaProducer) {
		if d > 0 {
			p.batchTimeout = d
		}
	}
}

// NewKafkaProducer returns a producer for brokers. No connection is made until the first
// event is written.
func NewKafkaProducer(brokers []string, opts ...ProducerOption) *KafkaProducer {
	p := &KafkaProducer{
		brokers:      brokers,
		batchTimeout: DefaultBatchTimeout,
		writers:      make(map[string]*kafka.Writer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WriteMessages sends one dispatcher batch to topic.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writer(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           p.batchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

// Close flushes and closes every topic writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.writers, topic)
	}
	return errors.Join(errs...)
}
