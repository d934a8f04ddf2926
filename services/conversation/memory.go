package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dakotahome/models"
)

// MemoryStore keeps all conversation state in process memory for the
// process lifetime. Sufficient for demos; substitute a durable Store for
// production.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]models.Thread
	items   map[string][]models.ThreadItem
	drafts  map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads: make(map[string]models.Thread),
		items:   make(map[string][]models.ThreadItem),
		drafts:  make(map[string]map[string]string),
	}
}

func (s *MemoryStore) LoadThread(ctx context.Context, id string) (models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[id]
	if !ok {
		return models.Thread{}, fmt.Errorf("thread %s: %w", id, ErrNotFound)
	}
	return thread, nil
}

func (s *MemoryStore) SaveThread(ctx context.Context, thread models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[thread.ID] = thread
	return nil
}

func (s *MemoryStore) LoadThreads(ctx context.Context, limit int, after string, order Order) (models.ThreadPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		all = append(all, t)
	}
	data, hasMore, next := paginate(all, limit, after, order,
		func(t models.Thread) time.Time { return t.CreatedAt },
		func(t models.Thread) string { return t.ID })
	return models.ThreadPage{Data: data, HasMore: hasMore, After: next}, nil
}

func (s *MemoryStore) DeleteThread(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Thread, items and draft go as one logical unit.
	delete(s.threads, id)
	delete(s.items, id)
	delete(s.drafts, id)
	return nil
}

func (s *MemoryStore) LoadThreadItems(ctx context.Context, threadID string, limit int, after string, order Order) (models.ItemPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, hasMore, next := paginate(s.items[threadID], limit, after, order,
		func(i models.ThreadItem) time.Time { return i.CreatedAt },
		func(i models.ThreadItem) string { return i.ID })
	return models.ItemPage{Data: data, HasMore: hasMore, After: next}, nil
}

func (s *MemoryStore) AddThreadItem(ctx context.Context, threadID string, item models.ThreadItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[threadID] = append(s.items[threadID], item)
	return nil
}

func (s *MemoryStore) SaveItem(ctx context.Context, threadID string, item models.ThreadItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[threadID]
	for idx, existing := range items {
		if existing.ID == item.ID {
			items[idx] = item
			return nil
		}
	}
	s.items[threadID] = append(items, item)
	return nil
}

func (s *MemoryStore) LoadItem(ctx context.Context, threadID, itemID string) (models.ThreadItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items[threadID] {
		if item.ID == itemID {
			return item, nil
		}
	}
	return models.ThreadItem{}, fmt.Errorf("item %s in thread %s: %w", itemID, threadID, ErrNotFound)
}

func (s *MemoryStore) DeleteThreadItem(ctx context.Context, threadID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[threadID]
	kept := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items[threadID] = kept
	return nil
}

func (s *MemoryStore) GetDraft(ctx context.Context, threadID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyDraft(s.drafts[threadID]), nil
}

func (s *MemoryStore) UpdateDraft(ctx context.Context, threadID string, partial map[string]string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.drafts[threadID]
	if draft == nil {
		draft = make(map[string]string)
		s.drafts[threadID] = draft
	}
	for k, v := range partial {
		draft[k] = v
	}
	return copyDraft(draft), nil
}

func (s *MemoryStore) SaveAttachment(ctx context.Context, id string, data []byte) error {
	return ErrNotSupported
}

func (s *MemoryStore) LoadAttachment(ctx context.Context, id string) ([]byte, error) {
	return nil, ErrNotSupported
}

func (s *MemoryStore) DeleteAttachment(ctx context.Context, id string) error {
	return ErrNotSupported
}

func copyDraft(draft map[string]string) map[string]string {
	out := make(map[string]string, len(draft))
	for k, v := range draft {
		out[k] = v
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
