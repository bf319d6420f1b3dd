package twofactor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileRepository implements Repository using file-based storage
type FileRepository struct {
	dataDir string
	records map[uuid.UUID]Record
	mutex   sync.RWMutex
}

// twoFactorData represents the structure of data stored in the JSON file
type twoFactorData struct {
	Records []Record `json:"records"`
}

// NewFileRepository creates a new file-based two-factor repository
func NewFileRepository(dataDir string) (*FileRepository, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir: dataDir,
		records: make(map[uuid.UUID]Record),
	}

	// Load existing data
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// FindByUserID returns the record for a user, or (nil, nil) when absent
func (r *FileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Record, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rec, exists := r.records[userID]
	if !exists {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// Upsert creates or updates the record for a user
func (r *FileRepository) Upsert(ctx context.Context, userID uuid.UUID, params UpsertParams) (*Record, error) {
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

	if err := r.save(); err != nil {
		return nil, fmt.Errorf("failed to save: %w", err)
	}

	return cloneRecord(rec), nil
}

// Update applies changes to an existing record
func (r *FileRepository) Update(ctx context.Context, userID uuid.UUID, changes RecordChanges) (*Record, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rec, exists := r.records[userID]
	if !exists {
		return nil, ErrRecordNotFound
	}

	changes.apply(&rec)
	rec.UpdatedAt = time.Now().UTC()
	r.records[userID] = rec

	if err := r.save(); err != nil {
		return nil, fmt.Errorf("failed to save: %w", err)
	}

	return cloneRecord(rec), nil
}

// load reads two-factor data from file
func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "twofactor.json")

	// If file doesn't exist, start with an empty map
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// If file is empty, start with an empty map
	if len(data) == 0 {
		return nil
	}

	var tfData twoFactorData
	if err := json.Unmarshal(data, &tfData); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.records = make(map[uuid.UUID]Record)
	for _, rec := range tfData.Records {
		r.records[rec.UserID] = rec
	}

	return nil
}

// save writes two-factor data to file atomically
func (r *FileRepository) save() error {
	records := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}

	jsonData, err := json.MarshalIndent(twoFactorData{Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "twofactor.json.tmp")
	if err := os.WriteFile(tempFile, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "twofactor.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
