package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"dakotahome/models"
	"dakotahome/utils"
)

const (
	// DefaultTTL bounds how often the external feed is fetched.
	DefaultTTL = 300 * time.Second
	// fetchTimeout bounds a single feed download.
	fetchTimeout = 10 * time.Second
)

// FetchFunc downloads the raw feed bytes for a URL.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// FeedCache fetches and caches the external iCal feed describing
// already-booked date ranges. Constructed once per process; safe for
// concurrent use. Concurrent cache misses may each issue a fetch — the
// cache is not a single-flight barrier, which is acceptable because the
// feed is an idempotent read.
type FeedCache struct {
	URL string
	TTL time.Duration

	// Now and Fetch are injectable for tests.
	Now   func() time.Time
	Fetch FetchFunc

	logger *zap.Logger

	mu        sync.Mutex
	ranges    []models.BlockedRange
	haveData  bool
	fetchedAt time.Time
}

// NewFeedCache builds a cache for the given feed URL. An empty URL is
// valid and puts availability checks into unverified mode.
func NewFeedCache(url string, logger *zap.Logger) *FeedCache {
	return &FeedCache{
		URL:    url,
		TTL:    DefaultTTL,
		Now:    time.Now,
		Fetch:  httpFetch,
		logger: logger,
	}
}

// Configured reports whether a feed URL is set.
func (f *FeedCache) Configured() bool {
	return f.URL != ""
}

// BlockedRanges returns the blocked date ranges from the feed. The second
// return value reports whether feed data is present: false means either no
// URL is configured or no feed has ever been fetched successfully, and the
// caller must treat availability as not independently verified.
//
// Fetch or parse failures never surface to the caller: the previous cached
// value is served if one exists, else nothing.
func (f *FeedCache) BlockedRanges(ctx context.Context) ([]models.BlockedRange, bool) {
	if !f.Configured() {
		return nil, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.Now()
	if f.haveData && now.Sub(f.fetchedAt) < f.TTL {
		return f.ranges, true
	}

	data, err := f.Fetch(ctx, f.URL)
	if err == nil {
		var ranges []models.BlockedRange
		ranges, err = parseBlockedRanges(data)
		if err == nil {
			f.ranges = ranges
			f.haveData = true
			f.fetchedAt = now
			return f.ranges, true
		}
	}

	f.logger.Warn("calendar feed refresh failed, serving cached data",
		zap.String("url", f.URL), zap.Bool("cached", f.haveData), zap.Error(err))
	return f.ranges, f.haveData
}

// parseBlockedRanges extracts (start, end) date pairs from the feed's
// VEVENT components, normalizing datetime-typed bounds to calendar dates.
func parseBlockedRanges(data []byte) ([]models.BlockedRange, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse ical feed: %w", err)
	}

	var ranges []models.BlockedRange
	for _, event := range cal.Events() {
		start, err := eventDate(event.GetStartAt, event.GetAllDayStartAt)
		if err != nil {
			continue
		}
		end, err := eventDate(event.GetEndAt, event.GetAllDayEndAt)
		if err != nil {
			continue
		}
		ranges = append(ranges, models.BlockedRange{
			Start: utils.Truncate(start),
			End:   utils.Truncate(end),
		})
	}
	return ranges, nil
}

// eventDate tries the datetime accessor first, then the all-day one, since
// Airbnb feeds use DATE-typed bounds while other sources use timestamps.
func eventDate(at, allDay func() (time.Time, error)) (time.Time, error) {
	if t, err := at(); err == nil {
		return t, nil
	}
	return allDay()
}

func httpFetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
