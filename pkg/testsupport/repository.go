package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-kaizen/kaizen"
	"github.com/google/uuid"
)

var _ kaizen.Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory kaizen.Repository that counts calls and
// can be told to fail, so tests can observe exactly when the store is hit.
type MemoryRepository struct {
	mu        sync.RWMutex
	records   map[string]kaizen.Kaizen
	order     []string
	callCount map[string]int
	failures  map[string]error
	now       func() time.Time
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:   make(map[string]kaizen.Kaizen),
		callCount: make(map[string]int),
		failures:  make(map[string]error),
		now:       time.Now,
	}
}

// WithClock overrides the clock used to stamp created records.
func (m *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	m.now = now
	return m
}

// Fail makes every subsequent call to method return err. A nil err clears it.
func (m *MemoryRepository) Fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

// CallCount returns how many times method was invoked.
func (m *MemoryRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.callCount[method]
}

// ResetCalls zeroes every call counter.
func (m *MemoryRepository) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = make(map[string]int)
}

// Stored returns the record as the store holds it, bypassing counters.
func (m *MemoryRepository) Stored(id string) (kaizen.Kaizen, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	return r.Clone(), ok
}

func (m *MemoryRepository) track(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount[method]++
	return m.failures[method]
}

// Create implementation for the memory repository
func (m *MemoryRepository) Create(ctx context.Context, record kaizen.Kaizen) (kaizen.Kaizen, error) {
	if err := m.track("Create"); err != nil {
		return kaizen.Kaizen{}, err
	}
	record = record.Clone()
	record.ID = uuid.NewString()
	record.Stamp(m.now().UTC())

	m.mu.Lock()
	m.records[record.ID] = record
	m.order = append(m.order, record.ID)
	m.mu.Unlock()
	return record.Clone(), nil
}

// List implementation for the memory repository
func (m *MemoryRepository) List(ctx context.Context) ([]kaizen.Kaizen, error) {
	if err := m.track("List"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]kaizen.Kaizen, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].Clone())
	}
	return out, nil
}

// GetByID implementation for the memory repository
func (m *MemoryRepository) GetByID(ctx context.Context, id string) (kaizen.Kaizen, error) {
	if err := m.track("GetByID"); err != nil {
		return kaizen.Kaizen{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return kaizen.Kaizen{}, kaizen.NotFound(id)
	}
	return r.Clone(), nil
}

// Update implementation for the memory repository
func (m *MemoryRepository) Update(ctx context.Context, id string, patch kaizen.Patch) (kaizen.Kaizen, error) {
	if err := m.track("Update"); err != nil {
		return kaizen.Kaizen{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return kaizen.Kaizen{}, kaizen.NotFound(id)
	}
	r = patch.Apply(r)
	m.records[id] = r
	return r.Clone(), nil
}
