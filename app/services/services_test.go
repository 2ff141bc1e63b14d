package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizdash/app/auth"
	"bizdash/app/gateway"
	"bizdash/app/models"
	"bizdash/app/notify"
	"bizdash/app/repositories/mock"
	"bizdash/app/scheduler"
	"bizdash/app/session"
	"bizdash/app/store"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type mockGateway struct {
	posts    []models.Post
	users    []models.User
	comments []models.Comment
	err      error
	nextID   int64
	calls    []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		posts: []models.Post{
			{ID: 1, Title: "Alpha", Body: "first body", UserID: 1},
			{ID: 2, Title: "Beta", Body: "second body", UserID: 2},
		},
		users:    []models.User{{ID: 1, Name: "Leanne"}},
		comments: []models.Comment{{ID: 1, PostID: 1, Body: "nice"}},
		nextID:   100,
	}
}

func (m *mockGateway) failure(op string) error {
	m.calls = append(m.calls, op)
	if m.err != nil {
		return &gateway.NetworkError{Op: op, Err: m.err}
	}
	return nil
}

func (m *mockGateway) FetchPosts(ctx context.Context) ([]models.Post, error) {
	if err := m.failure("posts"); err != nil {
		return nil, err
	}
	return m.posts, nil
}

func (m *mockGateway) FetchUsers(ctx context.Context) ([]models.User, error) {
	if err := m.failure("users"); err != nil {
		return nil, err
	}
	return m.users, nil
}

func (m *mockGateway) FetchComments(ctx context.Context) ([]models.Comment, error) {
	if err := m.failure("comments"); err != nil {
		return nil, err
	}
	return m.comments, nil
}

func (m *mockGateway) CreatePost(ctx context.Context, input models.PostInput, acting int64) (models.Post, error) {
	if err := m.failure("create"); err != nil {
		return models.Post{}, err
	}
	if acting == 0 {
		acting = gateway.FallbackUserID
	}
	m.nextID++
	return models.Post{ID: m.nextID, Title: input.Title, Body: input.Body, UserID: acting}, nil
}

func (m *mockGateway) UpdatePost(ctx context.Context, id int64, input models.PostInput) (models.Post, error) {
	if err := m.failure("update"); err != nil {
		return models.Post{}, err
	}
	return models.Post{ID: id, Title: input.Title, Body: input.Body, UserID: input.UserID}, nil
}

func (m *mockGateway) DeletePost(ctx context.Context, id int64) error {
	return m.failure("delete")
}

type testEnv struct {
	clock    *scheduler.Manual
	store    *store.Store
	gateway  *mockGateway
	notes    *notify.Queue
	kv       *mock.KV
	sessions *session.Store
	dash     *DashboardService
	auth     *AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := scheduler.NewManual(epoch)
	sched := scheduler.New(clock)
	ids := scheduler.NewIDSource(clock)
	st := store.New(store.DefaultState(store.DefaultItemsPerPage))
	notes := notify.NewQueue(clock, notify.WithScheduler(sched), notify.WithIDSource(ids), notify.WithMirror(st))
	kv := mock.NewKV()
	sessions, err := session.Open(kv, session.WithClock(clock), session.WithIDSource(ids))
	if err != nil {
		t.Fatalf("open sessions: %v", err)
	}
	gw := newMockGateway()
	tokens := auth.NewTokenManager("test-secret", "bizdash", time.Hour).WithClock(clock)

	t.Cleanup(func() {
		notes.Close()
		sched.Stop()
		st.Close()
	})
	return &testEnv{
		clock:    clock,
		store:    st,
		gateway:  gw,
		notes:    notes,
		kv:       kv,
		sessions: sessions,
		dash:     NewDashboardService(st, gw, notes, sched, 0),
		auth:     NewAuthService(sessions, st, kv, tokens, notes),
	}
}

func messages(ns []models.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}

var errOffline = errors.New("offline")
