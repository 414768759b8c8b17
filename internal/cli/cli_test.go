package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arielspace/listing-board/internal/core/session"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) AfterFunc(time.Duration, func()) session.Timer { return idleTimer{} }

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeAPI serves just enough of the listing API for the CLI.
type fakeAPI struct {
	mu        sync.Mutex
	revoked   bool
	loggedOut bool
	lastAuth  string
	lastQuery string
}

const fakeToken = "tok-1"

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	user := map[string]any{"id": "u-1", "email": "ada@example.com", "first_name": "Ada", "last_name": "Lovelace", "role": "user"}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.lastAuth = r.Header.Get("Authorization")
			revoked := f.revoked
			f.mu.Unlock()
			if revoked || r.Header.Get("Authorization") != "Bearer "+fakeToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session expired, please log in again"})
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "pass123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":       user,
			"token":      fakeToken,
			"expires_at": time.Now().Add(time.Hour),
			"session":    map[string]any{"session_id": "s-1", "timeout_seconds": 300, "warning_seconds": 60},
		})
	})
	mux.HandleFunc("POST /auth/logout", authed(func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.loggedOut = true
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}))
	mux.HandleFunc("GET /auth/me", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}))
	mux.HandleFunc("POST /auth/session/extend", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":        "s-1",
			"state":             "active",
			"expires_at":        time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC),
			"remaining_seconds": 300,
		})
	}))
	mux.HandleFunc("GET /listings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = r.URL.Query().Get("q")
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"listings": []map[string]any{
			{"id": "l-1", "title": "Drone Mapping Project", "short_description": "Map farmland.", "has_certification": true, "created_at": "2026-01-02T00:00:00Z"},
		}})
	})
	mux.HandleFunc("GET /listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "l-1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "listing not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"listing": map[string]any{
			"id":                "l-1",
			"title":             "Drone Mapping Project",
			"short_description": "Map farmland.",
			"full_details":      "## About\nFly drones.\n### You will learn\n- Photogrammetry\n- GIS",
			"apply_url":         "https://forms.example.com/drone",
			"location":          "Remote",
			"deadline":          "2026-06-30",
			"created_at":        "2026-01-02T00:00:00Z",
		}})
	})
	return mux
}

func (f *fakeAPI) snapshot() (auth, query string, loggedOut bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth, f.lastQuery, f.loggedOut
}

type testEnv struct {
	api   *fakeAPI
	srv   *httptest.Server
	dir   string
	clock *stepClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return &testEnv{
		api:   api,
		srv:   srv,
		dir:   t.TempDir(),
		clock: &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
}

func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Options{
		In:         strings.NewReader(stdin),
		Out:        &out,
		Err:        &errOut,
		HTTPClient: e.srv.Client(),
		Clock:      e.clock,
	})
	cmd.SetArgs(append([]string{"--api-url", e.srv.URL, "--state-dir", e.dir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	out, _, err := e.run("", "login", "--email", "ada@example.com", "--password", "pass123")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome, Ada Lovelace!")
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("pass123\n", "login", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "logged in as ada@example.com (user)")
	assert.Contains(t, out, "5m0s without activity")
	assert.FileExists(t, filepath.Join(env.dir, session.DefaultKey+".json"))

	out, _, err = env.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace <ada@example.com> role=user")
	assert.Contains(t, out, "session active")
	auth, _, _ := env.api.snapshot()
	assert.Equal(t, "Bearer "+fakeToken, auth)

	out, _, err = env.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	_, _, loggedOut := env.api.snapshot()
	assert.True(t, loggedOut)
	_, statErr := os.Stat(filepath.Join(env.dir, session.DefaultKey+".json"))
	assert.True(t, os.IsNotExist(statErr))

	_, _, err = env.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("", "login", "--email", "ada@example.com", "--password", "nope")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "invalid email or password")

	_, _, err = env.run("", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email is required")
}

func TestRestore_LiveSessionResumes(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.clock.Advance(4 * time.Minute)
	out, _, err := env.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "expires "+env.clock.Now().Add(5*time.Minute).Format(time.Kitchen))
}

func TestRestore_ExpiredSessionIsCleared(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.clock.Advance(5*time.Minute + time.Second)
	out, _, err := env.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
	assert.Contains(t, out, "Your session expired after 5m0s of inactivity")

	out, _, err = env.run("", "listings", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "expired", "notice is shown once")
}

func TestExtend_DismissesWarning(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.clock.Advance(4*time.Minute + 30*time.Second)
	out, _, err := env.run("", "extend")
	require.NoError(t, err)
	assert.Contains(t, out, "Inactivity warning dismissed.")
	assert.Contains(t, out, "Session extended until")

	// The extension restarted the idle budget, so four more minutes is still live.
	env.clock.Advance(4 * time.Minute)
	out, _, err = env.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "session active")
}

func TestExtend_OutsideWarningCountsAsActivity(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.clock.Advance(time.Minute)
	out, _, err := env.run("", "extend")
	require.NoError(t, err)
	assert.NotContains(t, out, "warning dismissed")
	assert.Contains(t, out, "Session extended until")

	env.clock.Advance(4*time.Minute + 30*time.Second)
	_, _, err = env.run("", "whoami")
	require.NoError(t, err)
}

func TestUnauthorizedClearsLocalSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.api.mu.Lock()
	env.api.revoked = true
	env.api.mu.Unlock()

	_, _, err := env.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local session cleared")

	_, _, err = env.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestListings_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("", "listings", "list", "-q", "drone")
	require.NoError(t, err)
	_, query, _ := env.api.snapshot()
	assert.Equal(t, "drone", query)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Drone Mapping Project")
	assert.Contains(t, out, "2026-01-02")

	out, _, err = env.run("", "listings", "get", "l-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Location: Remote | Deadline: 2026-06-30")
	assert.Contains(t, out, "\nABOUT\n")
	assert.Contains(t, out, "\nYou will learn\n")
	assert.Contains(t, out, "  * Photogrammetry\n")
	assert.Contains(t, out, "Apply: https://forms.example.com/drone")

	_, _, err = env.run("", "listings", "get", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestListings_MutationsRequireAdminSession(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("", "listings", "delete", "l-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, _, err = env.run("", "listings", "create", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	env.login(t)
	for _, args := range [][]string{{"listings", "delete", "l-1"}, {"listings", "create", "--title", "x"}} {
		_, _, err = env.run("", args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "ada@example.com is not an admin", args)
	}
}

func TestShell_RunsCommandsAndAnnouncesWarning(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	env.clock.Advance(4*time.Minute + 30*time.Second)
	out, errOut, err := env.run("whoami\nlistings get \"missing id\"\n\nexit\nwhoami\n", "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "Your session will expire in 30s due to inactivity")
	assert.Contains(t, out, "Ada Lovelace <ada@example.com> role=user")
	assert.Contains(t, out, "ada@example.com [active]> ")
	assert.Contains(t, errOut, "error: api: 404")
	assert.Equal(t, 1, strings.Count(out, "role=user"), "commands after exit are not run")
}

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"listings list", []string{"listings", "list"}},
		{`  listings   create --title "Solar Panel Internship" `, []string{"listings", "create", "--title", "Solar Panel Internship"}},
		{`--short 'It''s'`, []string{"--short", "Its"}},
		{`--details "line\"quoted\""`, []string{"--details", `line"quoted"`}},
		{`--title ""`, []string{"--title", ""}},
		{"", nil},
	}
	for _, tc := range cases {
		got, err := splitArgs(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}

	_, err := splitArgs(`--title "open`)
	assert.Error(t, err)
}
