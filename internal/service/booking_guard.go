package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gestmed/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrBookingBusy is returned when the doctor lock could not be taken within the wait budget.
var ErrBookingBusy = errors.New("another booking for this doctor is in progress")

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisDoctorLockKeyPrefix = "booking:lock:doctor:"

	lockRetryInterval = 25 * time.Millisecond

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// BookingGuard serialises appointment writes per doctor so the service
// ownership check and the insert are not interleaved with another write.
//
// Lock ordering:
// 1. in-process doctor mutex
// 2. Redis doctor key, when a client is configured (other replicas)
type BookingGuard struct {
	redisClient *redis.Client
	log         *logrus.Logger
	lockTTL     time.Duration
	lockWait    time.Duration

	doctorMu sync.Map // map[int64]*doctorMutex

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// doctorMutex is a channel semaphore so that acquisition can honour a deadline.
type doctorMutex struct {
	sem      chan struct{}
	lastUsed atomic.Int64 // Unix timestamp
}

func (m *doctorMutex) tryLock() bool {
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

func (m *doctorMutex) unlock() {
	<-m.sem
}

// NewBookingGuard starts the stale mutex sweeper. redisClient may be nil.
// Call Stop() during graceful shutdown.
func NewBookingGuard(redisClient *redis.Client, cfg config.BookingConfig, log *logrus.Logger) *BookingGuard {
	g := &BookingGuard{
		redisClient: redisClient,
		log:         log,
		lockTTL:     cfg.LockTTL,
		lockWait:    cfg.LockWait,
		stopChan:    make(chan struct{}),
	}
	if g.lockTTL <= 0 {
		g.lockTTL = 10 * time.Second
	}
	if g.lockWait <= 0 {
		g.lockWait = 3 * time.Second
	}

	g.wg.Add(1)
	go g.cleanupMutexMapLoop()

	return g
}

// Stop is safe to call multiple times.
func (g *BookingGuard) Stop() {
	if g.stopped.CompareAndSwap(false, true) {
		close(g.stopChan)
		g.wg.Wait()
		g.log.Info("BookingGuard stopped")
	}
}

// WithDoctorLock runs fn while holding the lock for doctorID.
func (g *BookingGuard) WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error {
	waitCtx, cancelWait := context.WithTimeout(ctx, g.lockWait)
	defer cancelWait()

	m := g.getDoctorMutex(doctorID)
	select {
	case m.sem <- struct{}{}:
	case <-waitCtx.Done():
		return g.waitError(ctx, doctorID)
	}
	defer func() {
		m.lastUsed.Store(time.Now().Unix())
		m.unlock()
	}()

	if g.redisClient == nil {
		return fn(ctx)
	}

	key := fmt.Sprintf("%s%d", RedisDoctorLockKeyPrefix, doctorID)
	token := uuid.NewString()
	if err := g.acquire(waitCtx, key, token); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return g.waitError(ctx, doctorID)
		}
		return err
	}
	defer g.release(context.WithoutCancel(ctx), key, token)

	lockCtx, cancel := context.WithTimeout(ctx, g.lockTTL)
	defer cancel()

	return fn(lockCtx)
}

func (g *BookingGuard) waitError(ctx context.Context, doctorID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.log.Warnf("Timed out waiting for booking lock of doctor %d", doctorID)
	return ErrBookingBusy
}

func (g *BookingGuard) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := g.redisClient.SetNX(ctx, key, token, g.lockTTL).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			g.log.Warnf("Failed to acquire Redis lock %s: %+v", key, err)
			return fmt.Errorf("acquire doctor lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (g *BookingGuard) release(ctx context.Context, key, token string) {
	if _, err := releaseScript.Run(ctx, g.redisClient, []string{key}, token).Result(); err != nil && !errors.Is(err, redis.Nil) {
		g.log.Warnf("Failed to release Redis lock %s: %+v", key, err)
	}
}

func (g *BookingGuard) getDoctorMutex(doctorID int64) *doctorMutex {
	m, _ := g.doctorMu.LoadOrStore(doctorID, &doctorMutex{sem: make(chan struct{}, 1)})
	result := m.(*doctorMutex)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (g *BookingGuard) cleanupMutexMapLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes drops mutexes unused since cutoff. lastUsed is checked
// while holding the mutex so a concurrent user keeps its entry.
func (g *BookingGuard) cleanupStaleMutexes(cutoff time.Time) int {
	var cleaned int

	g.doctorMu.Range(func(key, value any) bool {
		m, ok := value.(*doctorMutex)
		if !ok {
			return true
		}
		if m.tryLock() {
			if m.lastUsed.Load() < cutoff.Unix() {
				g.doctorMu.Delete(key)
				cleaned++
			}
			m.unlock()
		}
		return true
	})

	if cleaned > 0 {
		g.log.Debugf("Cleaned up %d stale doctor mutexes", cleaned)
	}
	return cleaned
}
