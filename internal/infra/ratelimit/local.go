package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nano
}

// LocalLimiter token bucket в памяти процесса; используется, когда Redis выключен.
// Ключи без попыток дольше окна удаляются: их bucket к этому времени уже полный.
type LocalLimiter struct {
	limiters  sync.Map
	limit     int
	every     time.Duration
	idle      time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

// NewLocalLimiter создает лимитер: limit попыток сразу, затем одна попытка каждые window/limit
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	if limit < 1 {
		limit = 1
	}
	return &LocalLimiter{
		limit: limit,
		every: window / time.Duration(limit),
		idle:  window,
		now:   time.Now,
	}
}

// Allow возвращает false, если для ключа не осталось токенов
func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.sweep(now)

	entry := l.getEntry(key)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter.AllowN(now, 1), nil
}

func (l *LocalLimiter) getEntry(key string) *localEntry {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*localEntry)
	}

	entry := &localEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.limit)}
	actual, _ := l.limiters.LoadOrStore(key, entry)
	return actual.(*localEntry)
}

// sweep не чаще раза в окно удаляет простаивающие ключи
func (l *LocalLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idle) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-l.idle).UnixNano()
	l.limiters.Range(func(key, v any) bool {
		if v.(*localEntry).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
		}
		return true
	})
}
