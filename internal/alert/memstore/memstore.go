// Package memstore provides an in-memory implementation of alert.Store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/linnemanlabs/beacon/internal/alert"
)

// Store holds alerts in memory. Suitable for dev/testing. The active-dedup
// invariant is enforced by an index keyed on (type, dedup key), checked and
// updated under the write lock so InsertIfAbsent is atomic.
type Store struct {
	mu     sync.RWMutex
	alerts map[string]*alert.Alert // alert ID -> alert
	active map[string]string       // type|dedup key -> alert ID, active rows only
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		alerts: make(map[string]*alert.Alert),
		active: make(map[string]string),
	}
}

func activeKey(t alert.Type, dedupKey string) string {
	return string(t) + "\x00" + dedupKey
}

// InsertIfAbsent inserts the alert unless an active alert with the same
// (type, dedup key) exists.
func (s *Store) InsertIfAbsent(_ context.Context, a *alert.Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := activeKey(a.Type, a.DedupKey)
	if _, exists := s.active[key]; exists {
		return false, nil
	}

	cp := *a
	s.alerts[a.ID] = &cp
	if a.Status == alert.StatusActive {
		s.active[key] = a.ID
	}
	return true, nil
}

// Get retrieves an alert by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*alert.Alert, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, false, nil
	}
	cp := *a
	return &cp, true, nil
}

// List returns copies of all alerts matching the filter, most urgent and most
// recent first.
func (s *Store) List(_ context.Context, f alert.Filter) ([]*alert.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*alert.Alert
	for _, a := range s.alerts {
		if !matches(a, f) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if ri, rj := out[i].Severity.Rank(), out[j].Severity.Rank(); ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update stores a copy of the alert, maintaining the active-dedup index.
func (s *Store) Update(_ context.Context, a *alert.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.alerts[a.ID]
	if !ok {
		return alert.ErrNotFound
	}

	key := activeKey(prev.Type, prev.DedupKey)
	if prev.Status == alert.StatusActive && a.Status != alert.StatusActive {
		delete(s.active, key)
	}

	cp := *a
	s.alerts[a.ID] = &cp
	return nil
}

// Delete removes an alert by ID.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return false, nil
	}
	if a.Status == alert.StatusActive {
		delete(s.active, activeKey(a.Type, a.DedupKey))
	}
	delete(s.alerts, id)
	return true, nil
}

// CountActive returns the number of active alerts per severity.
func (s *Store) CountActive(_ context.Context) (map[alert.Severity]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[alert.Severity]int)
	for _, a := range s.alerts {
		if a.Status == alert.StatusActive {
			counts[a.Severity]++
		}
	}
	return counts, nil
}

func matches(a *alert.Alert, f alert.Filter) bool {
	if f.OrgID != "" && a.OrgID != "" && a.OrgID != f.OrgID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	return a.Links.Matches(f.Entity)
}
