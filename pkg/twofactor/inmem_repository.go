package twofactor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// Intended for tests and single-process deployments without persistence.
type InMemoryRepository struct {
	records map[uuid.UUID]Record
	mutex   sync.RWMutex
}

// NewInMemoryRepository creates a new in-memory two-factor repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[uuid.UUID]Record),
	}
}

// FindByUserID returns the record for a user, or (nil, nil) when absent
func (r *InMemoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Record, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rec, exists := r.records[userID]
	if !exists {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// Upsert creates or updates the record for a user
func (r *InMemoryRepository) Upsert(ctx context.Context, userID uuid.UUID, params UpsertParams) (*Record, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now().UTC()
	rec, exists := r.records[userID]
	if !exists {
		rec = Record{UserID: userID, CreatedAt: now}
		params.Create.apply(&rec)
	} else {
		params.Update.apply(&rec)
	}
	rec.UpdatedAt = now
	r.records[userID] = rec

	return cloneRecord(rec), nil
}

// Update applies changes to an existing record
func (r *InMemoryRepository) Update(ctx context.Context, userID uuid.UUID, changes RecordChanges) (*Record, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, exists := r.records[userID]
	if !exists {
		return nil, ErrRecordNotFound
	}

	changes.apply(&rec)
	rec.UpdatedAt = time.Now().UTC()
	r.records[userID] = rec

	return cloneRecord(rec), nil
}
