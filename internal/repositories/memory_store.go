package repositories

import (
	"context"
	"slices"
	"sync"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
)

// MemoryStore keeps requests and notifications in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	requests      map[string]models.Request
	order         []string
	notifications []models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]models.Request)}
}

func (s *MemoryStore) GetRequest(_ context.Context, id string) (models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return models.Request{}, domain.NotFoundError{Resource: "request", ID: id}
	}
	return r.Clone(), nil
}

func (s *MemoryStore) Snapshot(_ context.Context) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Request, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.requests[id].Clone())
	}
	return out, nil
}

// ListNotifications returns userID's notifications, newest first.
func (s *MemoryStore) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Notification{}
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		s:       s,
		put:     map[string]models.Request{},
		renamed: map[string]string{},
		read:    map[string]bool{},
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type retarget struct{ from, to string }

// memoryTx stages writes and applies them only on commit.
type memoryTx struct {
	s         *MemoryStore
	put       map[string]models.Request
	renamed   map[string]string // old id -> new id
	inserted  []string
	notifs    []models.Notification
	retargets []retarget
	read      map[string]bool
}

func (t *memoryTx) lookup(id string) (models.Request, bool) {
	if r, ok := t.put[id]; ok {
		return r, true
	}
	if _, gone := t.renamed[id]; gone {
		return models.Request{}, false
	}
	r, ok := t.s.requests[id]
	return r, ok
}

func (t *memoryTx) GetRequest(id string) (models.Request, error) {
	r, ok := t.lookup(id)
	if !ok {
		return models.Request{}, domain.NotFoundError{Resource: "request", ID: id}
	}
	return r.Clone(), nil
}

func (t *memoryTx) RequestIDs() ([]string, error) {
	ids := make([]string, 0, len(t.s.order)+len(t.inserted))
	for _, id := range t.s.order {
		if newID, ok := t.renamed[id]; ok {
			id = newID
		}
		ids = append(ids, id)
	}
	return append(ids, t.inserted...), nil
}

func (t *memoryTx) InsertRequest(r models.Request) error {
	if _, exists := t.lookup(r.ID); exists {
		return domain.ConflictError{Resource: "request", Msg: "identifier " + r.ID + " already exists"}
	}
	t.put[r.ID] = r.Clone()
	t.inserted = append(t.inserted, r.ID)
	return nil
}

func (t *memoryTx) ReplaceRequest(oldID string, r models.Request) error {
	if _, ok := t.lookup(oldID); !ok {
		return domain.NotFoundError{Resource: "request", ID: oldID}
	}
	if r.ID != oldID {
		if _, exists := t.lookup(r.ID); exists {
			return domain.ConflictError{Resource: "request", Msg: "identifier " + r.ID + " already exists"}
		}
		delete(t.put, oldID)
		if i := slices.Index(t.inserted, oldID); i >= 0 {
			t.inserted[i] = r.ID
		} else {
			orig := oldID
			for o, n := range t.renamed {
				if n == oldID {
					orig = o
				}
			}
			t.renamed[orig] = r.ID
		}
	}
	t.put[r.ID] = r.Clone()
	return nil
}

func (t *memoryTx) AppendNotification(n models.Notification) error {
	t.notifs = append(t.notifs, n)
	return nil
}

func (t *memoryTx) RetargetNotifications(oldRequestID, newRequestID string) error {
	t.retargets = append(t.retargets, retarget{from: oldRequestID, to: newRequestID})
	return nil
}

func (t *memoryTx) MarkNotificationRead(id string) error {
	found := slices.ContainsFunc(t.s.notifications, func(n models.Notification) bool { return n.ID == id }) ||
		slices.ContainsFunc(t.notifs, func(n models.Notification) bool { return n.ID == id })
	if !found {
		return domain.NotFoundError{Resource: "notification", ID: id}
	}
	t.read[id] = true
	return nil
}

func (t *memoryTx) commit() {
	s := t.s
	for i, id := range s.order {
		if newID, ok := t.renamed[id]; ok {
			delete(s.requests, id)
			s.order[i] = newID
		}
	}
	s.order = append(s.order, t.inserted...)
	for id, r := range t.put {
		s.requests[id] = r
	}

	s.notifications = append(s.notifications, t.notifs...)
	for _, rt := range t.retargets {
		for i := range s.notifications {
			if s.notifications[i].RequestID == rt.from {
				s.notifications[i].RequestID = rt.to
			}
		}
	}
	for i := range s.notifications {
		if t.read[s.notifications[i].ID] {
			s.notifications[i].Read = true
		}
	}
}
