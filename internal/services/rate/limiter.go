package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

type window struct {
	keyPrefix string
	span      time.Duration
	limit     int
}

// Limiter throttles contact unlock attempts per user over two counting
// windows. It bounds abusive scraping without touching the quota meter.
type Limiter struct {
	store   WindowStore
	windows []window
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	l := &Limiter{store: store}
	if perMinute > 0 {
		l.windows = append(l.windows, window{
			keyPrefix: "rate:unlocks:min:",
			span:      time.Minute,
			limit:     perMinute,
		})
	}
	if per10Sec > 0 {
		l.windows = append(l.windows, window{
			keyPrefix: "rate:unlocks:10s:",
			span:      10 * time.Second,
			limit:     per10Sec,
		})
	}
	return l
}

// AllowUnlock charges every window for the attempt and reports whether
// all of them are still under their limit. When not, the returned value
// is the number of seconds until the tightest window clears.
func (l *Limiter) AllowUnlock(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key(userID), w.span)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) && ceilSeconds(ttl) > retryAfterSec {
			retryAfterSec = ceilSeconds(ttl)
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfterUnlock inspects the windows without charging them.
func (l *Limiter) RetryAfterUnlock(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows {
		count, ttl, err := l.store.WindowState(ctx, w.key(userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) && ceilSeconds(ttl) > retryAfterSec {
			retryAfterSec = ceilSeconds(ttl)
		}
	}

	return retryAfterSec, nil
}

func (w window) key(userID int64) string {
	return w.keyPrefix + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
