package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, session, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[session][key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, session, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[session]
	if !ok {
		s = make(map[string]string)
		m.data[session] = s
	}
	s[key] = value
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, session)
	return nil
}

// Len reports the number of entries held for a session.
func (m *MemoryStore) Len(session string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[session])
}

// GormStore keeps entries in the chat_cache table.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Get(ctx context.Context, session, key string) (string, bool, error) {
	var rec Record
	err := s.DB.WithContext(ctx).
		Where("session_id = ? AND cache_key = ?", session, key).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return rec.Value, true, nil
}

func (s *GormStore) Set(ctx context.Context, session, key, value string) error {
	rec := Record{SessionID: session, Key: key, Value: value, UpdatedAt: time.Now()}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

func (s *GormStore) DeleteSession(ctx context.Context, session string) error {
	return s.DB.WithContext(ctx).
		Where("session_id = ?", session).
		Delete(&Record{}).Error
}

func (s *GormStore) List(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := s.DB.WithContext(ctx).
		Order("session_id, created_at").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Record{})
	return res.RowsAffected, res.Error
}
