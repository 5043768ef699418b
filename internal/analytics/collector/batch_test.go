package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/kafka"
)

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, e kafka.Event) error {
	return p.PublishBatch(ctx, []kafka.Event{e})
}

func (p *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, events)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.batches {
		n += len(b)
	}
	return n
}

func TestFinalFlushOnCancel(t *testing.T) {
	pub := &fakePublisher{}
	bc := NewBatchCollector(pub, 100, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	bc.Start(ctx)

	for i := 0; i < 3; i++ {
		bc.Track(analytics.AnalysisEvent{DocumentID: "d"})
	}
	cancel()
	bc.Close()

	if pub.count() != 3 {
		t.Errorf("published %d events, want 3", pub.count())
	}
	if bc.BufferLen() != 0 {
		t.Errorf("buffer still holds %d events", bc.BufferLen())
	}
}

func TestFailedFlushRequeuesAndDrops(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	dropped := 0
	bc := NewBatchCollector(pub, 2, time.Hour, func(n int) { dropped += n })

	bc.mu.Lock()
	for i := 0; i < 8; i++ {
		bc.buffer = append(bc.buffer, kafka.Event{Key: "d"})
	}
	bc.mu.Unlock()

	bc.flush(context.Background())
	if bc.BufferLen() != 6 {
		t.Errorf("buffer = %d after failed flush, want 6", bc.BufferLen())
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}
