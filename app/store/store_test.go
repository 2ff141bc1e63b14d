package store

import (
	"sync"
	"testing"

	"bizdash/app/models"

	"github.com/stretchr/testify/assert"
)

func TestStoreDispatch(t *testing.T) {
	s := New(DefaultState(10))
	defer s.Close()

	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	s.Dispatch(SetPosts{Posts: samplePosts()})
	s.Dispatch(SetSearchTerm{Term: "beta"})
	assert.Equal(t, uint64(2), s.Version())
	assert.Len(t, seen, 2)
	assert.Equal(t, "beta", s.State().SearchTerm)

	t.Run("unknown action does not bump version", func(t *testing.T) {
		s.Dispatch(unknownAction{})
		assert.Equal(t, uint64(2), s.Version())
		assert.Len(t, seen, 2)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		unsubscribe()
		s.Dispatch(SetCurrentPage{Page: 2})
		assert.Len(t, seen, 2)
	})
}

func TestStoreClose(t *testing.T) {
	s := New(DefaultState(10))
	calls := 0
	s.Subscribe(func(State) { calls++ })

	s.Close()
	st := s.Dispatch(CreatePost{Post: models.Post{ID: 1}})

	assert.Empty(t, st.Posts)
	assert.Empty(t, s.State().Posts)
	assert.Zero(t, calls)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	s := New(DefaultState(10))
	defer s.Close()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Dispatch(CreatePost{Post: models.Post{ID: id}})
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, s.State().Posts, 50)
	assert.Equal(t, uint64(50), s.Version())
}
