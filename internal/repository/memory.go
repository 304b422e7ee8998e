package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/theater-service/internal/model"
)

// MemoryDB is an in-process theaters table.  It backs the "memory" driver
// and handler tests.  Ids start at 1 and are never reused.
type MemoryDB struct {
	mu     sync.RWMutex
	rows   map[int64]model.Theater
	nextID int64
}

// NewMemoryDB returns an empty table.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{rows: make(map[int64]model.Theater), nextID: 1}
}

// NewMemoryStoreFactory opens a MemoryStore over db per request.
func NewMemoryStoreFactory(db *MemoryDB) StoreFactory {
	return func() TheaterStore { return &MemoryStore{db: db} }
}

// Len reports the number of stored theaters.
func (db *MemoryDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.rows)
}

// MemoryStore is the TheaterStore session over a MemoryDB.
type MemoryStore struct {
	db      *MemoryDB
	pending []pendingOp
}

// FindByID returns a copy of the stored row.
func (s *MemoryStore) FindByID(_ context.Context, id int64) (*model.Theater, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	t, ok := s.db.rows[id]
	if !ok {
		return nil, ErrTheaterNotFound
	}
	return copyTheater(t), nil
}

// ListAll returns copies of every row ordered by id.
func (s *MemoryStore) ListAll(_ context.Context) ([]*model.Theater, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]*model.Theater, 0, len(s.db.rows))
	for _, t := range s.db.rows {
		out = append(out, copyTheater(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Add(t *model.Theater)    { s.pending = append(s.pending, pendingOp{opAdd, t}) }
func (s *MemoryStore) Update(t *model.Theater) { s.pending = append(s.pending, pendingOp{opUpdate, t}) }
func (s *MemoryStore) Remove(t *model.Theater) { s.pending = append(s.pending, pendingOp{opRemove, t}) }

// SaveChanges checks every staged update/remove against the table before
// touching it, so a failed batch leaves the table unchanged.
func (s *MemoryStore) SaveChanges(_ context.Context) error {
	ops := s.pending
	s.pending = nil
	if len(ops) == 0 {
		return nil
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	// existence as it will be at each step of the batch
	exists := func(id int64) bool { _, ok := s.db.rows[id]; return ok }
	removed := map[int64]bool{}
	for _, op := range ops {
		if op.kind == opAdd {
			continue
		}
		id := op.theater.ID
		if removed[id] || !exists(id) {
			return ErrTheaterNotFound
		}
		if op.kind == opRemove {
			removed[id] = true
		}
	}

	for _, op := range ops {
		t := op.theater
		switch op.kind {
		case opAdd:
			t.ID = s.db.nextID
			s.db.nextID++
			s.db.rows[t.ID] = *copyTheater(*t)
		case opUpdate:
			s.db.rows[t.ID] = *copyTheater(*t)
		case opRemove:
			delete(s.db.rows, t.ID)
		}
	}
	return nil
}

func copyTheater(t model.Theater) *model.Theater {
	if t.Notes != nil {
		n := *t.Notes
		t.Notes = &n
	}
	return &t
}
