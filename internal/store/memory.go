package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Sink. Contents are lost on exit.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Insert(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uint(len(m.records) + 1)
	rec.CreatedAt = time.Now()
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *Memory) ListAll(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) Close() error { return nil }
