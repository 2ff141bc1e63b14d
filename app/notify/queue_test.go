package notify

import (
	"testing"
	"time"

	"bizdash/app/models"
	"bizdash/app/scheduler"
	"bizdash/app/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestQueue(t *testing.T) (*Queue, *scheduler.Manual, *store.Store) {
	clock := scheduler.NewManual(epoch)
	st := store.New(store.DefaultState(0))
	q := NewQueue(clock, WithMirror(st))
	t.Cleanup(q.Close)
	return q, clock, st
}

func TestPostExpires(t *testing.T) {
	q, clock, st := setupTestQueue(t)

	n := q.Post("Posts loaded successfully!", models.KindSuccess)
	assert.Equal(t, epoch.UnixMilli(), n.ID)
	assert.Equal(t, epoch, n.CreatedAt)
	require.Len(t, q.List(), 1)
	require.Len(t, st.State().Notifications, 1)

	clock.Advance(4 * time.Second)
	assert.Len(t, q.List(), 1)

	clock.Advance(2 * time.Second)
	assert.Empty(t, q.List())
	assert.Empty(t, st.State().Notifications)
}

func TestPostDefaultsToInfo(t *testing.T) {
	q, _, _ := setupTestQueue(t)
	n := q.Post("hello", "")
	assert.Equal(t, models.KindInfo, n.Kind)
}

func TestOrderAndUniqueIDs(t *testing.T) {
	q, clock, _ := setupTestQueue(t)

	a := q.Post("a", models.KindInfo)
	b := q.Post("b", models.KindError)
	clock.Advance(time.Second)
	c := q.Post("c", models.KindSuccess)

	assert.Less(t, a.ID, b.ID)
	assert.Less(t, b.ID, c.ID)

	var msgs []string
	for _, n := range q.List() {
		msgs = append(msgs, n.Message)
	}
	assert.Equal(t, []string{"a", "b", "c"}, msgs)

	// a and b expire at 5s, c at 6s.
	clock.Advance(4 * time.Second)
	require.Len(t, q.List(), 1)
	assert.Equal(t, "c", q.List()[0].Message)
}

func TestRemove(t *testing.T) {
	q, clock, st := setupTestQueue(t)
	a := q.Post("a", models.KindInfo)
	b := q.Post("b", models.KindInfo)

	assert.True(t, q.Remove(a.ID))
	assert.False(t, q.Remove(a.ID))
	assert.False(t, q.Remove(999))

	require.Len(t, q.List(), 1)
	assert.Equal(t, b.ID, q.List()[0].ID)
	assert.Equal(t, q.List(), st.State().Notifications)

	v := st.Version()
	clock.Advance(6 * time.Second)
	assert.Empty(t, q.List())
	// Only b's expiry reached the store.
	assert.Equal(t, v+1, st.Version())
}

func TestCustomTTL(t *testing.T) {
	clock := scheduler.NewManual(epoch)
	q := NewQueue(clock, WithTTL(time.Second))
	q.Post("short", models.KindInfo)

	clock.Advance(999 * time.Millisecond)
	assert.Len(t, q.List(), 1)
	clock.Advance(time.Millisecond)
	assert.Empty(t, q.List())
}

func TestClose(t *testing.T) {
	clock := scheduler.NewManual(epoch)
	q := NewQueue(clock)
	q.Post("a", models.KindInfo)
	q.Close()

	assert.Equal(t, 0, clock.Pending())
	q.Post("b", models.KindInfo)
	assert.Len(t, q.List(), 1)
}
