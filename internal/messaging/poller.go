package messaging

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var pollerTracer = otel.Tracer("messaging/poller")

const defaultFetchWait = 1 * time.Second

// Poller drains pending shipping ids from a Kafka topic in batches. Unlike a
// streaming consumer it does not block waiting for work: each fetch gets a
// short deadline, and the poll returns whatever arrived before it expired.
// Messages are committed as they are fetched, so delivery is at-least-once
// and a batch that dies mid-processing loses its in-flight ids.
type Poller struct {
	reader    *kafka.Reader
	topic     string
	groupID   string
	fetchWait time.Duration
}

type PollerOption func(*Poller)

// WithFetchWait overrides how long a poll waits for the next message before
// concluding the queue is drained.
func WithFetchWait(wait time.Duration) PollerOption {
	return func(p *Poller) {
		p.fetchWait = wait
	}
}

func NewPoller(brokers []string, topic, groupID string, opts ...PollerOption) *Poller {
	p := &Poller{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     groupID,
			StartOffset: kafka.FirstOffset,
		}),
		topic:     topic,
		groupID:   groupID,
		fetchWait: defaultFetchWait,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PollShippings returns up to batchSize pending shipping ids in enqueue
// order. It returns an empty slice once the fetch deadline passes with no
// further messages.
func (p *Poller) PollShippings(ctx context.Context, batchSize int) ([]string, error) {
	ids := make([]string, 0, batchSize)

	for len(ids) < batchSize {
		msg, ok, err := p.fetchOne(ctx)
		if err != nil {
			return ids, err
		}
		if !ok {
			break
		}

		p.recordDelivery(ctx, msg)

		if err := p.reader.CommitMessages(ctx, msg); err != nil {
			return ids, err
		}

		ids = append(ids, string(msg.Value))
	}

	return ids, nil
}

func (p *Poller) fetchOne(ctx context.Context) (kafka.Message, bool, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchWait)
	defer cancel()

	msg, err := p.reader.FetchMessage(fetchCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return kafka.Message{}, false, nil
		}
		return kafka.Message{}, false, err
	}

	return msg, true, nil
}

func (p *Poller) recordDelivery(ctx context.Context, msg kafka.Message) {
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, NewMessageCarrier(&msg))

	_, span := pollerTracer.Start(parentCtx, "poll "+p.topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("poll"),
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaConsumerGroup(p.groupID),
			semconv.MessagingKafkaMessageOffset(int(msg.Offset)),
			semconv.MessagingDestinationPartitionID(strconv.Itoa(msg.Partition)),
			semconv.MessagingKafkaMessageKey(string(msg.Key)),
		),
	)
	span.End()
}

func (p *Poller) Close() error {
	return p.reader.Close()
}
