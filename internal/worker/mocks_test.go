package worker

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn
	PrepareErr error
	SendErr    error

	mu      sync.Mutex
	queries []string
	batches []*MockBatch
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.PrepareErr != nil {
		return nil, m.PrepareErr
	}
	b := &MockBatch{sendErr: m.SendErr}
	m.batches = append(m.batches, b)
	return b, nil
}

// sentRows returns every row of every successfully sent batch.
func (m *MockClickHouseConn) sentRows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows [][]interface{}
	for _, b := range m.batches {
		rows = append(rows, b.sentRows()...)
	}
	return rows
}

// MockBatch is appended to and sent by the worker goroutine while tests read
// it, so every field access holds mu.
type MockBatch struct {
	mu      sync.Mutex
	rows    [][]interface{}
	sent    bool
	sendErr error
}

func (m *MockBatch) sentRows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sent {
		return nil
	}
	return append([][]interface{}(nil), m.rows...)
}

func (m *MockBatch) IsSent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

func (m *MockBatch) Rows() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, v)
	return nil
}

func (m *MockBatch) AppendStruct(v interface{}) error {
	return nil
}

func (m *MockBatch) Column(int) driver.BatchColumn {
	return nil
}

func (m *MockBatch) Send() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = true
	return nil
}

func (m *MockBatch) Flush() error {
	return nil
}

func (m *MockBatch) Abort() error {
	return nil
}
