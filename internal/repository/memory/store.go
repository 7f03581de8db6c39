// Package memory keeps every repository in process memory. It backs local
// development (STORAGE_BACKEND=memory) and the HTTP tests.
package memory

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gestmed/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Store is shared by all memory repositories so that joins and reference
// checks see one consistent state.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	seq          int64
	patients     map[int64]entity.Patient
	doctors      map[int64]entity.Doctor
	services     map[string]entity.Service
	appointments map[string]entity.Appointment
	aliveLogs    []entity.AliveLog
}

func NewStore() *Store {
	return &Store{
		now:          func() time.Time { return time.Now().UTC() },
		patients:     make(map[int64]entity.Patient),
		doctors:      make(map[int64]entity.Doctor),
		services:     make(map[string]entity.Service),
		appointments: make(map[string]entity.Appointment),
	}
}

// nextID must be called with mu held for writing.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) nextStringID() string {
	return strconv.FormatInt(s.nextID(), 10)
}

// joinService copies the referenced service fields onto a, with mu held.
func (s *Store) joinService(a entity.Appointment) entity.Appointment {
	a.ServiceName, a.ServiceDescription = "", ""
	a.DurationMinutes = 0
	a.Price = decimal.Zero
	if svc, ok := s.services[a.ServiceID]; ok {
		a.ServiceName = svc.Name
		a.ServiceDescription = svc.Description
		a.DurationMinutes = svc.DurationMinutes
		a.Price = svc.Price
	}
	return a
}

func containsFold(value, search string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func copyJSON(j entity.JSON) entity.JSON {
	if j == nil {
		return nil
	}
	out := make(entity.JSON, len(j))
	for k, v := range j {
		out[k] = v
	}
	return out
}

// newestFirst orders by created_at DESC then id DESC.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}
