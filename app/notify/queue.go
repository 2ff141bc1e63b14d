// Package notify holds the short-lived notifications shown by the dashboard.
package notify

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"bizdash/app/models"
	"bizdash/app/scheduler"
	"bizdash/app/store"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Dispatcher receives the store actions mirroring queue changes.
type Dispatcher interface {
	Dispatch(store.Action) store.State
}

// Queue is an ordered list of notifications that expire after a fixed TTL.
type Queue struct {
	sched  *scheduler.Scheduler
	ids    *scheduler.IDSource
	ttl    time.Duration
	mirror Dispatcher

	mu     sync.Mutex
	items  []models.Notification
	closed bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(q *Queue) { q.ttl = ttl }
}

// WithIDSource shares an id source with other components.
func WithIDSource(ids *scheduler.IDSource) Option {
	return func(q *Queue) { q.ids = ids }
}

// WithScheduler runs expiries on an existing scheduler.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(q *Queue) { q.sched = s }
}

// WithMirror dispatches ADD_NOTIFICATION and REMOVE_NOTIFICATION to d.
func WithMirror(d Dispatcher) Option {
	return func(q *Queue) { q.mirror = d }
}

// NewQueue creates an empty queue timed by clock.
func NewQueue(clock scheduler.Clock, opts ...Option) *Queue {
	q := &Queue{ttl: DefaultTTL}
	for _, opt := range opts {
		opt(q)
	}
	if q.sched == nil {
		q.sched = scheduler.New(clock)
	}
	if q.ids == nil {
		q.ids = scheduler.NewIDSource(clock)
	}
	return q
}

// Post appends a notification and schedules its removal. An empty kind is
// treated as info.
func (q *Queue) Post(message string, kind models.NotificationKind) models.Notification {
	if kind == "" {
		kind = models.KindInfo
	}
	id := q.ids.Next()
	n := models.Notification{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.UnixMilli(id).UTC(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return n
	}
	q.items = append(slices.Clone(q.items), n)
	q.sched.Schedule(expiryKey(id), q.ttl, func() { q.expire(id) })
	q.mu.Unlock()

	if q.mirror != nil {
		q.mirror.Dispatch(store.AddNotification{Notification: n})
	}
	return n
}

// Remove drops the notification with id and cancels its expiry. Removing an
// unknown id does nothing.
func (q *Queue) Remove(id int64) bool {
	q.sched.Cancel(expiryKey(id))
	return q.drop(id)
}

func (q *Queue) expire(id int64) {
	q.drop(id)
}

func (q *Queue) drop(id int64) bool {
	q.mu.Lock()
	i := slices.IndexFunc(q.items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		q.mu.Unlock()
		return false
	}
	q.items = slices.Delete(slices.Clone(q.items), i, i+1)
	q.mu.Unlock()

	if q.mirror != nil {
		q.mirror.Dispatch(store.RemoveNotification{ID: id})
	}
	return true
}

// List returns the live notifications in the order they were posted.
func (q *Queue) List() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Close cancels pending expiries. Notifications posted afterwards are not
// queued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for _, n := range q.items {
		q.sched.Cancel(expiryKey(n.ID))
	}
}

func expiryKey(id int64) string {
	return fmt.Sprintf("notification:%d", id)
}
