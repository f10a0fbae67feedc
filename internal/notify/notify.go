// Package notify collects transient user-facing notifications. Every
// user-facing failure in the application surfaces here as an auto-dismissing
// message; none are fatal.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long a notification stays active before auto-dismissal.
const DefaultTTL = 5 * time.Second

// Level distinguishes confirmations from failures.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one transient message.
type Notification struct {
	Level   Level
	Message string
	At      time.Time
}

// Center holds the currently active notifications. Safe for concurrent use.
type Center struct {
	ttl time.Duration

	mu     sync.Mutex
	nextID int
	active map[int]Notification
}

// NewCenter creates a notification center. A non-positive ttl selects
// DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:    ttl,
		active: make(map[int]Notification),
	}
}

// Success publishes a confirmation message.
func (c *Center) Success(message string) {
	slog.Info("notification", "level", LevelSuccess, "message", message)
	c.publish(Notification{Level: LevelSuccess, Message: message, At: time.Now()})
}

// Error publishes a failure message.
func (c *Center) Error(message string) {
	slog.Warn("notification", "level", LevelError, "message", message)
	c.publish(Notification{Level: LevelError, Message: message, At: time.Now()})
}

func (c *Center) publish(n Notification) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.active[id] = n
	c.mu.Unlock()

	time.AfterFunc(c.ttl, func() {
		c.mu.Lock()
		delete(c.active, id)
		c.mu.Unlock()
	})
}

// Active returns the notifications that haven't expired yet, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.active))
	for id := 0; id < c.nextID; id++ {
		if n, ok := c.active[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
