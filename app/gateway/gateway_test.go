package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizdash/app/models"
	"bizdash/app/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"Alpha","body":"first body","userId":3}]`))
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":3,"name":"Ann","address":{"city":"Gwenborough","geo":{"lat":"1"}},"company":{"name":"Acme"}}]`))
	})
	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":9,"postId":1,"name":"n","email":"e@x.io","body":"b"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := setupTestServer(t)
	g := NewHTTPGateway(srv.URL+"/", WithLatency(0))
	ctx := context.Background()

	posts, err := g.FetchPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Post{{ID: 1, Title: "Alpha", Body: "first body", UserID: 3}}, posts)

	users, err := g.FetchUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Gwenborough", users[0].Address.City)
	assert.Equal(t, "Acme", users[0].Company.Name)

	comments, err := g.FetchComments(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, int64(1), comments[0].PostID)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"a list"`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPGateway(srv.URL).FetchPosts(context.Background())
			var nerr *NetworkError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, "fetch posts", nerr.Op)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPGateway(url).FetchUsers(context.Background())
		var nerr *NetworkError
		assert.True(t, errors.As(err, &nerr))
	})
}

func TestSimulatedWrites(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := scheduler.NewManual(start)
	g := NewHTTPGateway("", WithClock(clock), WithLatency(0))
	ctx := context.Background()
	input := models.PostInput{Title: "Hello", Body: "a long enough body"}

	post, err := g.CreatePost(ctx, input, 0)
	require.NoError(t, err)
	assert.Equal(t, start.UnixMilli(), post.ID)
	assert.Equal(t, FallbackUserID, post.UserID)

	next, err := g.CreatePost(ctx, input, 7)
	require.NoError(t, err)
	assert.Greater(t, next.ID, post.ID)
	assert.Equal(t, int64(7), next.UserID)

	updated, err := g.UpdatePost(ctx, 42, models.PostInput{Title: "New", Body: "new body text", UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, models.Post{ID: 42, Title: "New", Body: "new body text", UserID: 7}, updated)

	assert.NoError(t, g.DeletePost(ctx, 42))
}

func TestSimulatedLatency(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	g := NewHTTPGateway("", WithClock(clock), WithLatency(time.Second))

	done := make(chan error, 1)
	go func() { done <- g.DeletePost(context.Background(), 1) }()

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("delete returned before latency elapsed")
	default:
	}
	clock.Advance(time.Second)
	assert.NoError(t, <-done)
}

func TestSimulatedWriteCancelled(t *testing.T) {
	clock := scheduler.NewManual(time.Unix(0, 0))
	g := NewHTTPGateway("", WithClock(clock), WithLatency(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.CreatePost(ctx, models.PostInput{}, 1)
	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr))
	assert.ErrorIs(t, err, context.Canceled)
}
