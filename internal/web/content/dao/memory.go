package dao

import (
	"context"
	"sort"
	"sync"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

type memCollection struct {
	ids  []string
	docs map[string]map[string]any
}

type memWatcher struct {
	q  Query
	fn Listener
}

// MemoryStore keeps documents in process memory.
// Collections keep insertion order.
type MemoryStore struct {
	mu       sync.Mutex
	cols     map[string]*memCollection
	watchers map[string]map[int]*memWatcher
	nextWID  int
	newID    func() string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cols:     map[string]*memCollection{},
		watchers: map[string]map[int]*memWatcher{},
		newID:    uuid.NewString,
	}
}

func (s *MemoryStore) col(name string) *memCollection {
	c, ok := s.cols[name]
	if !ok {
		c = &memCollection{docs: map[string]map[string]any{}}
		s.cols[name] = c
	}

	return c
}

func (s *MemoryStore) snapshot(col string) []*model.Document {
	c := s.col(col)
	docs := make([]*model.Document, 0, len(c.ids))
	for _, id := range c.ids {
		docs = append(docs, model.NewDocument(id, cloneData(c.docs[id])))
	}

	return docs
}

// GetAll lists documents of col matching q.
func (s *MemoryStore) GetAll(_ context.Context, col string, q Query) ([]*model.Document, error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	s.mu.Lock()
	docs := s.snapshot(col)
	s.mu.Unlock()

	return applyQuery(docs, q), nil
}

// Get loads one document.
func (s *MemoryStore) Get(_ context.Context, col, id string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.col(col).docs[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s/%s", col, id)
	}

	return model.NewDocument(id, cloneData(data)), nil
}

// Add inserts data under a fresh uuid.
func (s *MemoryStore) Add(_ context.Context, col string, data map[string]any) (string, error) {
	s.mu.Lock()
	id := s.newID()
	c := s.col(col)
	c.ids = append(c.ids, id)
	c.docs[id] = cloneData(data)
	s.mu.Unlock()

	s.notify(col)
	return id, nil
}

// Update merges data into an existing document.
func (s *MemoryStore) Update(_ context.Context, col, id string, data map[string]any) error {
	s.mu.Lock()
	existing, ok := s.col(col).docs[id]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(ErrNotFound, "%s/%s", col, id)
	}
	for k, v := range data {
		existing[k] = cloneValue(v)
	}
	s.mu.Unlock()

	s.notify(col)
	return nil
}

// Set merges data into the document, creating it when absent.
func (s *MemoryStore) Set(_ context.Context, col, id string, data map[string]any) error {
	s.mu.Lock()
	c := s.col(col)
	existing, ok := c.docs[id]
	if !ok {
		existing = map[string]any{}
		c.docs[id] = existing
		c.ids = append(c.ids, id)
	}
	for k, v := range data {
		existing[k] = cloneValue(v)
	}
	s.mu.Unlock()

	s.notify(col)
	return nil
}

// Delete removes a document if present.
func (s *MemoryStore) Delete(_ context.Context, col, id string) error {
	s.mu.Lock()
	c := s.col(col)
	if _, ok := c.docs[id]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.ids {
		if v == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify(col)
	return nil
}

// BatchUpdate checks every id before writing anything.
func (s *MemoryStore) BatchUpdate(_ context.Context, col string, updates map[string]map[string]any) error {
	s.mu.Lock()
	c := s.col(col)
	for id := range updates {
		if _, ok := c.docs[id]; !ok {
			s.mu.Unlock()
			return errors.Wrapf(ErrNotFound, "%s/%s", col, id)
		}
	}
	for id, data := range updates {
		for k, v := range data {
			c.docs[id][k] = cloneValue(v)
		}
	}
	s.mu.Unlock()

	s.notify(col)
	return nil
}

// Subscribe pushes the current result immediately and after every write to col.
func (s *MemoryStore) Subscribe(ctx context.Context, col string, q Query, fn Listener) (func(), error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	s.mu.Lock()
	wid := s.nextWID
	s.nextWID++
	if s.watchers[col] == nil {
		s.watchers[col] = map[int]*memWatcher{}
	}
	s.watchers[col][wid] = &memWatcher{q: q, fn: fn}
	docs := s.snapshot(col)
	s.mu.Unlock()

	fn(applyQuery(docs, q), nil)

	var once sync.Once
	stopped := make(chan struct{})
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers[col], wid)
			s.mu.Unlock()
			close(stopped)
		})
	}
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				stop()
			case <-stopped:
			}
		}()
	}

	return stop, nil
}

// notify runs listeners of col outside the lock, in subscription order.
func (s *MemoryStore) notify(col string) {
	s.mu.Lock()
	ws := s.watchers[col]
	wids := make([]int, 0, len(ws))
	for wid := range ws {
		wids = append(wids, wid)
	}
	sort.Ints(wids)
	listeners := make([]*memWatcher, 0, len(wids))
	for _, wid := range wids {
		listeners = append(listeners, ws[wid])
	}
	docs := s.snapshot(col)
	s.mu.Unlock()

	for _, w := range listeners {
		w.fn(applyQuery(cloneDocs(docs), w.q), nil)
	}
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
