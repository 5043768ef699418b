package analytics

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
)

// Collector publishes analysis events to Kafka from a background goroutine
// so the request path never waits on the broker.
type Collector struct {
	producer  kafka.Publisher
	eventCh   chan AnalysisEvent
	logger    *slog.Logger
	done      chan struct{}
	onDropped func()
}

// NewCollector buffers up to bufferSize events. onDropped, when non-nil,
// is called for every event discarded because the buffer was full.
func NewCollector(producer kafka.Publisher, bufferSize int, onDropped func()) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer:  producer,
		eventCh:   make(chan AnalysisEvent, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
		onDropped: onDropped,
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track queues event without blocking.
func (c *Collector) Track(event AnalysisEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analysis event dropped (buffer full)", "doc_id", event.DocumentID)
		if c.onDropped != nil {
			c.onDropped()
		}
	}
}

// Close stops accepting events and waits for the queue to drain.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event AnalysisEvent) {
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   event.DocumentID,
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish analysis event", "doc_id", event.DocumentID, "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
