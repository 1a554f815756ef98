package visitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatehouse/pkg/platform/sentinel"
)

// InMemoryStore keeps visitor records in process memory, used when no durable
// store is configured. All access is mutex-guarded; the map is keyed by
// record id.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, records: make(map[string]Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.RecordID]; exists {
		return 0, sentinel.ErrConflict
	}
	record.ID = s.nextID
	s.nextID++
	s.records[record.RecordID] = record
	return record.ID, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(Record) bool { return true }), nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(r Record) bool { return r.Status == StatusIn }), nil
}

// snapshot returns matching records newest first. Callers hold the lock.
func (s *InMemoryStore) snapshot(match func(Record) bool) []Record {
	out := []Record{}
	for _, record := range s.records {
		if match(record) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckInTime.Equal(out[j].CheckInTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].CheckInTime.After(out[j].CheckInTime)
	})
	return out
}

func (s *InMemoryStore) FindByRecordID(_ context.Context, recordID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return record, nil
}

func (s *InMemoryStore) FindByQRCode(_ context.Context, token string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.QRCode == token {
			return record, nil
		}
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) CompleteCheckOut(_ context.Context, recordID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if record.Status != StatusIn {
		return sentinel.ErrAlreadyCheckedOut
	}
	record.Status = StatusOut
	t := at
	record.CheckOutTime = &t
	record.UpdatedAt = at
	s.records[recordID] = record
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, recordID string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[recordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	patch.Apply(&record)
	record.UpdatedAt = time.Now()
	s.records[recordID] = record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[recordID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, recordID)
	return nil
}

func (s *InMemoryStore) Stats(_ context.Context, dayStart, dayEnd time.Time) (DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats DailyStats
	for _, record := range s.records {
		if !record.CheckInTime.Before(dayStart) && record.CheckInTime.Before(dayEnd) {
			stats.TodayIn++
		}
		if record.CheckOutTime != nil &&
			!record.CheckOutTime.Before(dayStart) && record.CheckOutTime.Before(dayEnd) {
			stats.TodayOut++
		}
		if record.Status == StatusIn {
			stats.Pending++
		}
	}
	return stats, nil
}
