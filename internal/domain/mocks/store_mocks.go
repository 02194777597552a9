package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user/event-pipeline/internal/domain"
)

// MockRawEventStore is a mock implementation of domain.RawEventStore for testing.
type MockRawEventStore struct {
	mu            sync.Mutex
	WrittenDays   []time.Time
	WrittenEvents [][]domain.Event
	ReadAllResult []domain.Event
	WriteErr      error
	ReadErr       error
}

func (m *MockRawEventStore) WriteBatch(ctx context.Context, day time.Time, events []domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.WrittenDays = append(m.WrittenDays, day)
	batch := make([]domain.Event, len(events))
	copy(batch, events)
	m.WrittenEvents = append(m.WrittenEvents, batch)
	return nil
}

func (m *MockRawEventStore) ReadAll(ctx context.Context) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.ReadAllResult, nil
}

// AllWritten flattens every written batch in write order.
func (m *MockRawEventStore) AllWritten() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Event
	for _, batch := range m.WrittenEvents {
		all = append(all, batch...)
	}
	return all
}

// MockCleanedRecordStore is a mock implementation of domain.CleanedRecordStore for testing.
type MockCleanedRecordStore struct {
	mu             sync.Mutex
	WrittenRecords []domain.CleanedRecord
	WriteErr       error
}

func (m *MockCleanedRecordStore) WriteRecords(ctx context.Context, records []domain.CleanedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.WrittenRecords = append(m.WrittenRecords, records...)
	return nil
}
