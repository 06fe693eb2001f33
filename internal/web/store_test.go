package web

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/memberdesk/internal/core"
	"github.com/JonMunkholm/memberdesk/internal/csvcodec"
)

// memStore is an in-memory core.Store for handler tests.
type memStore struct {
	mu   sync.Mutex
	ids  []uuid.UUID
	rows map[uuid.UUID]csvcodec.Record
	runs []core.ImportRun
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uuid.UUID]csvcodec.Record)}
}

func (m *memStore) UpsertRows(ctx context.Context, ds core.Dataset, rows []core.Row) (int, []core.RowError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		if _, ok := m.rows[row.ID]; !ok {
			m.ids = append(m.ids, row.ID)
		}
		m.rows[row.ID] = row.Values
	}
	return len(rows), nil, nil
}

func (m *memStore) ListRows(ctx context.Context, ds core.Dataset) ([]csvcodec.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]csvcodec.Record, len(m.ids))
	for i, id := range m.ids {
		out[i] = m.rows[id]
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context, ds core.Dataset) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.ids)), nil
}

func (m *memStore) CountBy(ctx context.Context, ds core.Dataset, column string) ([]core.GroupCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, rec := range m.rows {
		counts[rec[column]]++
	}
	out := make([]core.GroupCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, core.GroupCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (m *memStore) ExistingIDs(ctx context.Context, ds core.Dataset, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := map[uuid.UUID]bool{}
	for _, id := range ids {
		if _, ok := m.rows[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

func (m *memStore) RecordImport(ctx context.Context, run core.ImportRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memStore) ListImports(ctx context.Context, dataset string, limit int) ([]core.ImportRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.ImportRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].Dataset == dataset {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *memStore) PruneImports(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// downPinger always fails its health check.
type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }
