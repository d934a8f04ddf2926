// Package conversation owns thread metadata, ordered per-thread item
// history and per-thread booking-draft scratch state.
package conversation

import (
	"context"
	"errors"
	"sort"
	"time"

	"dakotahome/models"
)

// Sentinel errors. Not-found conditions propagate to the transport layer
// as a distinct condition; attachment operations are an unsupported
// capability and fail loudly rather than being silently ignored.
var (
	ErrNotFound     = errors.New("not found")
	ErrNotSupported = errors.New("attachments not supported")
)

// Order is the pagination direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Store is the conversation store contract. The in-memory implementation
// is the demo-grade default; a durable backend can be substituted as long
// as the pagination cursor contract (opaque row id, lenient missing
// cursor) is preserved. Turns for the same thread are expected to be
// serialized by the caller.
type Store interface {
	LoadThread(ctx context.Context, id string) (models.Thread, error)
	SaveThread(ctx context.Context, thread models.Thread) error
	LoadThreads(ctx context.Context, limit int, after string, order Order) (models.ThreadPage, error)
	DeleteThread(ctx context.Context, id string) error

	LoadThreadItems(ctx context.Context, threadID string, limit int, after string, order Order) (models.ItemPage, error)
	// AddThreadItem appends unconditionally; use it only when the item id
	// is known to be fresh.
	AddThreadItem(ctx context.Context, threadID string, item models.ThreadItem) error
	// SaveItem upserts by item id: an existing item is replaced in place,
	// keeping its position; otherwise the item is appended.
	SaveItem(ctx context.Context, threadID string, item models.ThreadItem) error
	LoadItem(ctx context.Context, threadID, itemID string) (models.ThreadItem, error)
	DeleteThreadItem(ctx context.Context, threadID, itemID string) error

	// GetDraft returns the booking draft for a thread, empty if none
	// exists yet — never ErrNotFound.
	GetDraft(ctx context.Context, threadID string) (map[string]string, error)
	// UpdateDraft shallow-merges partial into the draft and returns the
	// merged result.
	UpdateDraft(ctx context.Context, threadID string, partial map[string]string) (map[string]string, error)

	SaveAttachment(ctx context.Context, id string, data []byte) error
	LoadAttachment(ctx context.Context, id string) ([]byte, error)
	DeleteAttachment(ctx context.Context, id string) error
}

// paginate slices one page out of rows. Rows are sorted by (created, id)
// per order; if after is set the page starts just past the row with that
// id, or from the beginning when the cursor is absent from the set. The
// returned cursor is the id of the last row when more remain.
func paginate[T any](rows []T, limit int, after string, order Order, created func(T) time.Time, id func(T) string) ([]T, bool, string) {
	sorted := make([]T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := created(sorted[i]), created(sorted[j])
		var less bool
		if !ti.Equal(tj) {
			less = ti.Before(tj)
		} else {
			less = id(sorted[i]) < id(sorted[j])
		}
		if order == OrderDesc {
			return !less
		}
		return less
	})

	start := 0
	if after != "" {
		for idx, row := range sorted {
			if id(row) == after {
				start = idx + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	data := sorted[start:end]
	hasMore := end < len(sorted)

	next := ""
	if hasMore && len(data) > 0 {
		next = id(data[len(data)-1])
	}
	return data, hasMore, next
}
