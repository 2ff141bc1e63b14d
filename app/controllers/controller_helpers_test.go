package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizdash/app/auth"
	"bizdash/app/gateway"
	"bizdash/app/notify"
	"bizdash/app/repositories/mock"
	"bizdash/app/scheduler"
	"bizdash/app/services"
	"bizdash/app/session"
	"bizdash/app/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const postsJSON = `[
	{"id":1,"title":"Alpha","body":"first body","userId":1},
	{"id":2,"title":"Beta","body":"second body","userId":2}
]`

type testEnv struct {
	clock   *scheduler.Manual
	store   *store.Store
	dash    *services.DashboardService
	auth    *services.AuthService
	router  *mux.Router
	failAPI bool
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	prev := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(prev) })

	env := &testEnv{}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env.failAPI {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/posts":
			io.WriteString(w, postsJSON)
		case "/users":
			io.WriteString(w, `[{"id":1,"name":"Leanne","address":{"city":"Gwenborough"},"company":{"name":"Romaguera"}}]`)
		case "/comments":
			io.WriteString(w, `[{"id":1,"postId":1,"name":"n","email":"e@x.io","body":"nice"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(api.Close)

	env.clock = scheduler.NewManual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	sched := scheduler.New(env.clock)
	ids := scheduler.NewIDSource(env.clock)
	env.store = store.New(store.DefaultState(store.DefaultItemsPerPage))
	notes := notify.NewQueue(env.clock, notify.WithScheduler(sched), notify.WithIDSource(ids), notify.WithMirror(env.store))
	kv := mock.NewKV()
	sessions, err := session.Open(kv, session.WithClock(env.clock), session.WithIDSource(ids))
	require.NoError(t, err)
	gw := gateway.NewHTTPGateway(api.URL, gateway.WithClock(env.clock), gateway.WithIDSource(ids), gateway.WithLatency(0))
	tokens := auth.NewTokenManager("test-secret", "bizdash", time.Hour).WithClock(env.clock)

	env.dash = services.NewDashboardService(env.store, gw, notes, sched, 0)
	env.auth = services.NewAuthService(sessions, env.store, kv, tokens, notes)
	env.router = setupRouter(env)
	t.Cleanup(func() {
		notes.Close()
		sched.Stop()
		env.store.Close()
	})
	return env
}

func setupRouter(env *testEnv) *mux.Router {
	router := mux.NewRouter()
	pc := NewPostController(env.dash)
	dc := NewDataController(env.dash, env.auth)
	ac := NewAuthController(env.auth)

	// Register routes manually
	router.HandleFunc("/posts", pc.Index).Methods("GET")
	router.HandleFunc("/posts/refresh", pc.Refresh).Methods("POST")
	router.HandleFunc("/posts", pc.Create).Methods("POST")
	router.HandleFunc("/posts/{id}", pc.Update).Methods("PUT")
	router.HandleFunc("/posts/{id}", pc.Delete).Methods("DELETE")
	router.HandleFunc("/view", pc.SetView).Methods("PUT")
	router.HandleFunc("/users", dc.Users).Methods("GET")
	router.HandleFunc("/comments", dc.Comments).Methods("GET")
	router.HandleFunc("/analytics", dc.Analytics).Methods("GET")
	router.HandleFunc("/notifications", dc.Notifications).Methods("GET")
	router.HandleFunc("/notifications/{id}", dc.DismissNotification).Methods("DELETE")
	router.HandleFunc("/auth/register", ac.Register).Methods("POST")
	router.HandleFunc("/auth/login", ac.Login).Methods("POST")
	router.HandleFunc("/auth/logout", ac.Logout).Methods("POST")
	router.HandleFunc("/auth/me", ac.Me).Methods("GET")
	router.HandleFunc("/auth/roles", ac.Roles).Methods("GET")
	router.HandleFunc("/accounts", ac.Accounts).Methods("GET")
	router.HandleFunc("/accounts/{id}", ac.UpdateAccount).Methods("PUT")
	router.HandleFunc("/accounts/{id}", ac.DeleteAccount).Methods("DELETE")
	return router
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
