package sink

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps written tables in memory. It backs dry runs.
type Memory struct {
	mu     sync.Mutex
	tables map[string]*Table
	writes int
}

// NewMemory creates an empty memory sink.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*Table)}
}

// Write implements Sink.
func (m *Memory) Write(ctx context.Context, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	copied := *t
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.Name] = &copied
	m.writes++
	return nil
}

// Close implements Sink.
func (m *Memory) Close() error {
	return nil
}

// Table returns the last written content of name.
func (m *Memory) Table(name string) (*Table, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[name]
	return t, ok
}

// Names returns the written table names in sorted order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Writes returns the number of Write calls that succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
