package events

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestProducerReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, WithBatchTimeout(10*time.Millisecond))

	w := p.writer(DefaultTopic)
	require.Same(t, w, p.writer(DefaultTopic))
	require.NotSame(t, w, p.writer("other"))
	require.Equal(t, DefaultTopic, w.Topic)
	require.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	require.IsType(t, &kafka.Hash{}, w.Balancer)

	require.NoError(t, p.Close())
	require.Empty(t, p.writers)
}

func TestProducerDefaults(t *testing.T) {
	p := NewKafkaProducer(nil, WithBatchTimeout(0))
	require.Equal(t, DefaultBatchTimeout, p.batchTimeout)
}
