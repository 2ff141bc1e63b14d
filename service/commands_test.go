package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bizdash/app/repositories"
	"bizdash/app/scheduler"
	"bizdash/config"
	"bizdash/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevLog := output.Writer, log.Writer()
	output.Writer = &buf
	log.SetOutput(io.Discard)
	t.Cleanup(func() {
		output.Writer = prevOut
		log.SetOutput(prevLog)
	})
	return &buf
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			io.WriteString(w, `[{"id":1,"title":"Alpha","body":"first body","userId":1},{"id":2,"title":"Beta","body":"second body","userId":2}]`)
		case "/users":
			io.WriteString(w, `[{"id":1,"name":"Leanne","email":"l@x.io","company":{"name":"Acme"},"address":{"city":"Gwen"}}]`)
		default:
			io.WriteString(w, `[]`)
		}
	}))
	t.Cleanup(api.Close)
	return api
}

// isolateEnv pins every DASH_* variable the commands read.
func isolateEnv(t *testing.T, dataDir string) {
	t.Helper()
	t.Setenv("DASH_STORAGE", "badger")
	t.Setenv("DASH_BADGER_DIR", dataDir)
	t.Setenv("DASH_DATABASE_URL", "")
	t.Setenv("DASH_ADMIN_EMAIL", "admin@bod.com")
	t.Setenv("DASH_ADMIN_PASSWORD", "password")
	t.Setenv("DASH_HASH_PASSWORDS", "false")
	t.Setenv("DASH_WRITE_LATENCY", "0")
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func testConfig(apiURL string) config.Config {
	return config.Config{
		Storage:         config.StorageMemory,
		APIBaseURL:      apiURL,
		APITimeout:      time.Second,
		ItemsPerPage:    10,
		NotificationTTL: 5 * time.Second,
		TokenSecret:     "test-secret",
		TokenIssuer:     "bizdash",
		TokenTTL:        time.Hour,
		AdminEmail:      "boss@corp.io",
		AdminPassword:   "hunter22",
		CORSOrigins:     []string{"*"},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	kv, err := repositories.OpenBadgerKV("")
	require.NoError(t, err)
	app, err := newApp(cfg, kv, func() { kv.Close() }, scheduler.RealClock{})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestDatabaseLifecycle(t *testing.T) {
	buf := captureOutput(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "badger")

	require.NoError(t, initDB(path))
	assert.Contains(t, buf.String(), "Database initialized")
	assert.DirExists(t, path)

	require.NoError(t, initDB(path))
	assert.Contains(t, buf.String(), "already exists")

	kv, err := repositories.OpenBadgerKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(repositories.KeyAuthToken, "tok"))
	require.NoError(t, kv.Close())

	file, err := backupDB(path, filepath.Join(dir, "backups"), time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "backup_1700000000.db"), file)
	assert.FileExists(t, file)

	require.NoError(t, cleanDB(path, strings.NewReader("y\n"), false))
	assert.NoDirExists(t, path)

	require.NoError(t, restoreDB(path, file, strings.NewReader(""), false))
	kv, err = repositories.OpenBadgerKV(path)
	require.NoError(t, err)
	defer kv.Close()
	got, ok, err := kv.Get(repositories.KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", got)
}

func TestCleanDB(t *testing.T) {
	tests := []struct {
		name    string
		create  bool
		input   string
		yes     bool
		wantErr error
		removed bool
	}{
		{name: "missing database", create: false, removed: true},
		{name: "confirmed", create: true, input: "y\n", removed: true},
		{name: "declined", create: true, input: "n\n", wantErr: errCancelled},
		{name: "empty answer", create: true, input: "\n", wantErr: errCancelled},
		{name: "forced", create: true, yes: true, removed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureOutput(t)
			path := filepath.Join(t.TempDir(), "badger")
			if tt.create {
				require.NoError(t, os.MkdirAll(path, 0o755))
			}

			err := cleanDB(path, strings.NewReader(tt.input), tt.yes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.removed {
				assert.NoDirExists(t, path)
			} else {
				assert.DirExists(t, path)
			}
		})
	}
}

func TestRestoreRejectsBadFiles(t *testing.T) {
	captureOutput(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "badger")

	err := restoreDB(path, filepath.Join(dir, "missing.db"), strings.NewReader(""), true)
	assert.ErrorContains(t, err, "does not exist")

	empty := filepath.Join(dir, "empty.db")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	err = restoreDB(path, empty, strings.NewReader(""), true)
	assert.ErrorContains(t, err, "is empty")

	_, err = backupDB(path, filepath.Join(dir, "backups"), time.Now())
	assert.ErrorContains(t, err, "no database")
}

func TestRootCommand(t *testing.T) {
	captureOutput(t)

	t.Run("version", func(t *testing.T) {
		isolateEnv(t, t.TempDir())
		out, err := runCommand(t, "", "--version")
		require.NoError(t, err)
		assert.Contains(t, out, version)
	})

	t.Run("version command skips config", func(t *testing.T) {
		isolateEnv(t, t.TempDir())
		t.Setenv("DASH_STORAGE", "redis")
		out, err := runCommand(t, "", "version")
		require.NoError(t, err)
		assert.Equal(t, "bizdash version "+version+"\n", out)
	})

	t.Run("init uses data dir flag", func(t *testing.T) {
		isolateEnv(t, t.TempDir())
		dir := t.TempDir()
		_, err := runCommand(t, "", "init", "--data-dir", dir)
		require.NoError(t, err)
		assert.DirExists(t, filepath.Join(dir, "badger"))
	})

	t.Run("maintenance needs badger", func(t *testing.T) {
		isolateEnv(t, t.TempDir())
		_, err := runCommand(t, "", "backup", "--storage", "memory")
		assert.ErrorContains(t, err, "needs badger storage")
	})

	t.Run("unknown storage flag", func(t *testing.T) {
		isolateEnv(t, t.TempDir())
		_, err := runCommand(t, "", "accounts", "--storage", "redis")
		assert.ErrorContains(t, err, "unknown DASH_STORAGE")
	})

	t.Run("restore needs a file", func(t *testing.T) {
		isolateEnv(t, t.TempDir())
		_, err := runCommand(t, "", "restore")
		assert.Error(t, err)
	})
}

func TestAccountsCommand(t *testing.T) {
	buf := captureOutput(t)
	isolateEnv(t, t.TempDir())

	_, err := runCommand(t, "", "accounts", "--storage", "memory")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "admin@bod.com")
	assert.Contains(t, buf.String(), "Administrator")
	assert.NotContains(t, buf.String(), "password")
}

func TestReportCommand(t *testing.T) {
	buf := captureOutput(t)
	isolateEnv(t, t.TempDir())
	api := fakeAPI(t)

	_, err := runCommand(t, "", "report", "--json", "--storage", "memory", "--api-url", api.URL)
	require.NoError(t, err)

	var report struct {
		Summary struct {
			TotalPosts int `json:"totalPosts"`
			TotalUsers int `json:"totalUsers"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, 2, report.Summary.TotalPosts)
	assert.Equal(t, 1, report.Summary.TotalUsers)

	buf.Reset()
	_, err = runCommand(t, "", "report", "--storage", "memory", "--api-url", api.URL)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Recent posts")
	assert.Contains(t, buf.String(), "Acme")
	assert.Contains(t, buf.String(), "Accounts by role")
}

func TestAppWiring(t *testing.T) {
	captureOutput(t)
	api := fakeAPI(t)

	t.Run("seeds the configured admin", func(t *testing.T) {
		app := newTestApp(t, testConfig(api.URL))
		acc, token, err := app.Auth.Login("boss@corp.io", "hunter22")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int64(1), acc.ID)
		assert.True(t, app.Auth.HasPermission("manage_users"))
	})

	t.Run("hashes passwords when enabled", func(t *testing.T) {
		cfg := testConfig(api.URL)
		cfg.HashPasswords = true
		cfg.BcryptCost = 4
		app := newTestApp(t, cfg)

		var accounts []struct {
			Password string `json:"password"`
		}
		ok, err := repositories.GetJSON(app.KV, repositories.KeyAccounts, &accounts)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, accounts, 1)
		assert.NotEqual(t, "hunter22", accounts[0].Password)

		_, _, err = app.Auth.Login("boss@corp.io", "hunter22")
		assert.NoError(t, err)
	})

	t.Run("sign in", func(t *testing.T) {
		app := newTestApp(t, testConfig(api.URL))
		assert.ErrorContains(t, signIn(app, "", ""), "no active session")
		assert.Error(t, signIn(app, "boss@corp.io", "wrong"))
		require.NoError(t, signIn(app, "boss@corp.io", "hunter22"))
		assert.NotNil(t, app.Store.State().User)
	})
}

func TestRunServer(t *testing.T) {
	captureOutput(t)
	api := fakeAPI(t)
	app := newTestApp(t, testConfig(api.URL))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunServer(ctx, app, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Len(t, app.Store.State().Posts, 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
