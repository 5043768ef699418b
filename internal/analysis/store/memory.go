package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis"
	apperrors "github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/errors"
)

// Memory keeps the most recent reports in process. When full, the oldest
// analysed report is evicted.
type Memory struct {
	mu       sync.RWMutex
	reports  map[string]*analysis.Report
	capacity int
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Memory{
		reports:  make(map[string]*analysis.Report),
		capacity: capacity,
	}
}

func (m *Memory) Save(_ context.Context, r *analysis.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.reports[r.DocumentID]; !exists && len(m.reports) >= m.capacity {
		m.evictOldest()
	}
	m.reports[r.DocumentID] = r
	return nil
}

func (m *Memory) Get(_ context.Context, documentID string) (*analysis.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[documentID]
	if !ok {
		return nil, fmt.Errorf("report %s: %w", documentID, apperrors.ErrReportNotFound)
	}
	return r, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]*analysis.Report, error) {
	m.mu.RLock()
	all := make([]*analysis.Report, 0, len(m.reports))
	for _, r := range m.reports {
		all = append(all, r)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].AnalyzedAt.Equal(all[j].AnalyzedAt) {
			return all[i].DocumentID < all[j].DocumentID
		}
		return all[i].AnalyzedAt.After(all[j].AnalyzedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}

func (m *Memory) evictOldest() {
	var oldest *analysis.Report
	for _, r := range m.reports {
		if oldest == nil || r.AnalyzedAt.Before(oldest.AnalyzedAt) {
			oldest = r
		}
	}
	if oldest != nil {
		delete(m.reports, oldest.DocumentID)
	}
}
