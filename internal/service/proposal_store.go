package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edusphere/timetable-api/internal/models"
)

// proposal holds the candidate lessons of one dry-run placement until the
// caller accepts them or the TTL expires.
type proposal struct {
	ID        string
	ClassID   string
	Week      int
	Semester  int
	Lessons   []models.Lesson
	CreatedAt time.Time
	ExpiresAt time.Time
}

// proposalStore is an in-memory TTL store for dry-run proposals. Entries are
// purged lazily on access.
type proposalStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*proposal
	now   func() time.Time
}

func newProposalStore(ttl time.Duration) *proposalStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]*proposal),
		now:   time.Now,
	}
}

// Put stores the candidate set under a fresh id and returns the proposal.
func (s *proposalStore) Put(classID string, week, semester int, lessons []models.Lesson) *proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)

	p := &proposal{
		ID:        uuid.NewString(),
		ClassID:   classID,
		Week:      week,
		Semester:  semester,
		Lessons:   lessons,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.items[p.ID] = p
	return p
}

// Take removes and returns the proposal with the given id. Expired or unknown
// ids report false.
func (s *proposalStore) Take(id string) (*proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)

	p, ok := s.items[id]
	if !ok {
		return nil, false
	}
	delete(s.items, id)
	return p, true
}

func (s *proposalStore) purgeLocked(now time.Time) {
	for id, p := range s.items {
		if now.After(p.ExpiresAt) {
			delete(s.items, id)
		}
	}
}
