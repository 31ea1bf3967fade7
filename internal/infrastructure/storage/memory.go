package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/ports"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

type entry struct {
	s         ports.Session
	createdAt time.Time
	touchedAt time.Time
}

// Memory keeps sessions in process memory. Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]*entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*entry), now: time.Now}
}

func (m *Memory) Save(ctx context.Context, id string, s ports.Session) error {
	id = strings.TrimSpace(id)
	if id == "" || s == nil {
		return errors.New("invalid session: missing id")
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byID[id]; ok {
		e.s = s
		e.touchedAt = now
		return nil
	}
	m.byID[id] = &entry{s: s, createdAt: now, touchedAt: now}
	return nil
}

// Load returns the session and marks it as recently used.
func (m *Memory) Load(ctx context.Context, id string) (ports.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}
	e.touchedAt = m.now()
	return e.s, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.TrimSpace(id)
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// List returns one entry per session, oldest first.
func (m *Memory) List(ctx context.Context) ([]domain.GameMeta, error) {
	m.mu.RLock()
	out := make([]domain.GameMeta, 0, len(m.byID))
	for id, e := range m.byID {
		snap := e.s.Snapshot()
		out = append(out, domain.GameMeta{
			ID:        id,
			Seed:      snap.Seed,
			Status:    snap.Status,
			Remaining: snap.Remaining,
			CreatedAt: e.createdAt.UnixNano(),
			UpdatedAt: e.touchedAt.UnixNano(),
		})
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len is the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (m *Memory) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.byID {
		if e.touchedAt.Before(cutoff) {
			delete(m.byID, id)
			n++
		}
	}
	return n
}
