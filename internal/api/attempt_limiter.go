package api

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// attemptLimiter counts failed login and recovery attempts per client in a
// fixed window. Once limit failures land inside the window the client is
// blocked until the window that started with the first failure runs out.
type attemptLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]failureWindow
}

// limiterSweepThreshold is the tracked-client count past which recording a
// failure also drops every client whose window already closed.
const limiterSweepThreshold = 1024

type failureWindow struct {
	openedAt time.Time
	failures int
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]failureWindow),
	}
}

// retryAfter is zero when the client may try again.
func (limiter *attemptLimiter) retryAfter(client string, now time.Time) time.Duration {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	current, ok := limiter.activeLocked(client, now)
	if !ok || current.failures < limiter.limit {
		return 0
	}
	return current.openedAt.Add(limiter.window).Sub(now)
}

func (limiter *attemptLimiter) recordFailure(client string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	current, ok := limiter.activeLocked(client, now)
	if !ok {
		if len(limiter.clients) >= limiterSweepThreshold {
			limiter.sweepLocked(now)
		}
		current = failureWindow{openedAt: now}
	}
	current.failures++
	limiter.clients[client] = current
}

func (limiter *attemptLimiter) sweepLocked(now time.Time) {
	for client, current := range limiter.clients {
		if !now.Before(current.openedAt.Add(limiter.window)) {
			delete(limiter.clients, client)
		}
	}
}

func (limiter *attemptLimiter) forget(client string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.clients, client)
}

func (limiter *attemptLimiter) activeLocked(client string, now time.Time) (failureWindow, bool) {
	current, ok := limiter.clients[client]
	if !ok {
		return failureWindow{}, false
	}
	if !now.Before(current.openedAt.Add(limiter.window)) {
		delete(limiter.clients, client)
		return failureWindow{}, false
	}
	return current, true
}

func clientAddress(c *fiber.Ctx) string {
	address := strings.TrimSpace(c.IP())
	if address == "" {
		return "unknown"
	}
	return address
}

func setRetryAfter(c *fiber.Ctx, wait time.Duration) {
	seconds := int(wait.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds))
}
