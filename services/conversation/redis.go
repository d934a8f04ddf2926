package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"dakotahome/models"
)

// RedisStore is a durable Store substitute keeping the same contract as
// MemoryStore: threads and item lists as JSON values, drafts as hashes.
// Per-thread item lists are read-modify-write, so the caller's per-thread
// turn serialization still applies.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

const threadIndexKey = "threads"

func threadKey(id string) string      { return "thread:" + id }
func itemsKey(threadID string) string { return "items:" + threadID }
func draftKey(threadID string) string { return "draft:" + threadID }

func (s *RedisStore) LoadThread(ctx context.Context, id string) (models.Thread, error) {
	data, err := s.client.Get(ctx, threadKey(id)).Result()
	if err == redis.Nil {
		return models.Thread{}, fmt.Errorf("thread %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Thread{}, fmt.Errorf("load thread %s: %w", id, err)
	}

	var thread models.Thread
	if err := json.Unmarshal([]byte(data), &thread); err != nil {
		return models.Thread{}, fmt.Errorf("decode thread %s: %w", id, err)
	}
	return thread, nil
}

func (s *RedisStore) SaveThread(ctx context.Context, thread models.Thread) error {
	data, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("encode thread %s: %w", thread.ID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, threadKey(thread.ID), data, 0)
	pipe.SAdd(ctx, threadIndexKey, thread.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) LoadThreads(ctx context.Context, limit int, after string, order Order) (models.ThreadPage, error) {
	ids, err := s.client.SMembers(ctx, threadIndexKey).Result()
	if err != nil {
		return models.ThreadPage{}, fmt.Errorf("list threads: %w", err)
	}

	all := make([]models.Thread, 0, len(ids))
	for _, id := range ids {
		thread, err := s.LoadThread(ctx, id)
		if err != nil {
			continue // index entry without a value; skip
		}
		all = append(all, thread)
	}

	data, hasMore, next := paginate(all, limit, after, order,
		func(t models.Thread) time.Time { return t.CreatedAt },
		func(t models.Thread) string { return t.ID })
	return models.ThreadPage{Data: data, HasMore: hasMore, After: next}, nil
}

func (s *RedisStore) DeleteThread(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, threadKey(id), itemsKey(id), draftKey(id))
	pipe.SRem(ctx, threadIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) loadItems(ctx context.Context, threadID string) ([]models.ThreadItem, error) {
	data, err := s.client.Get(ctx, itemsKey(threadID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load items for thread %s: %w", threadID, err)
	}

	var items []models.ThreadItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("decode items for thread %s: %w", threadID, err)
	}
	return items, nil
}

func (s *RedisStore) saveItems(ctx context.Context, threadID string, items []models.ThreadItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items for thread %s: %w", threadID, err)
	}
	return s.client.Set(ctx, itemsKey(threadID), data, 0).Err()
}

func (s *RedisStore) LoadThreadItems(ctx context.Context, threadID string, limit int, after string, order Order) (models.ItemPage, error) {
	items, err := s.loadItems(ctx, threadID)
	if err != nil {
		return models.ItemPage{}, err
	}

	data, hasMore, next := paginate(items, limit, after, order,
		func(i models.ThreadItem) time.Time { return i.CreatedAt },
		func(i models.ThreadItem) string { return i.ID })
	return models.ItemPage{Data: data, HasMore: hasMore, After: next}, nil
}

func (s *RedisStore) AddThreadItem(ctx context.Context, threadID string, item models.ThreadItem) error {
	items, err := s.loadItems(ctx, threadID)
	if err != nil {
		return err
	}
	return s.saveItems(ctx, threadID, append(items, item))
}

func (s *RedisStore) SaveItem(ctx context.Context, threadID string, item models.ThreadItem) error {
	items, err := s.loadItems(ctx, threadID)
	if err != nil {
		return err
	}
	replaced := false
	for idx, existing := range items {
		if existing.ID == item.ID {
			items[idx] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return s.saveItems(ctx, threadID, items)
}

func (s *RedisStore) LoadItem(ctx context.Context, threadID, itemID string) (models.ThreadItem, error) {
	items, err := s.loadItems(ctx, threadID)
	if err != nil {
		return models.ThreadItem{}, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return models.ThreadItem{}, fmt.Errorf("item %s in thread %s: %w", itemID, threadID, ErrNotFound)
}

func (s *RedisStore) DeleteThreadItem(ctx context.Context, threadID, itemID string) error {
	items, err := s.loadItems(ctx, threadID)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	return s.saveItems(ctx, threadID, kept)
}

func (s *RedisStore) GetDraft(ctx context.Context, threadID string) (map[string]string, error) {
	draft, err := s.client.HGetAll(ctx, draftKey(threadID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load draft for thread %s: %w", threadID, err)
	}
	return draft, nil
}

func (s *RedisStore) UpdateDraft(ctx context.Context, threadID string, partial map[string]string) (map[string]string, error) {
	if len(partial) > 0 {
		fields := make(map[string]interface{}, len(partial))
		for k, v := range partial {
			fields[k] = v
		}
		if err := s.client.HSet(ctx, draftKey(threadID), fields).Err(); err != nil {
			return nil, fmt.Errorf("update draft for thread %s: %w", threadID, err)
		}
	}
	return s.GetDraft(ctx, threadID)
}

func (s *RedisStore) SaveAttachment(ctx context.Context, id string, data []byte) error {
	return ErrNotSupported
}

func (s *RedisStore) LoadAttachment(ctx context.Context, id string) ([]byte, error) {
	return nil, ErrNotSupported
}

func (s *RedisStore) DeleteAttachment(ctx context.Context, id string) error {
	return ErrNotSupported
}

var _ Store = (*RedisStore)(nil)
