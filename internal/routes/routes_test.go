package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/breachboard/breachboard/internal/app"
	"github.com/breachboard/breachboard/internal/config"
	"github.com/breachboard/breachboard/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA-1("password") = 5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8
const pwnedSuffix = "1E4C9B93F3F0682250B6CF8331B7EE68FD8"

type testEnv struct {
	server     *httptest.Server
	client     *http.Client
	breachHits *int
}

// newTestEnv wires the full application against a throwaway sqlite file and
// mocked upstream lookup services.
func newTestEnv(t *testing.T, breachStatus int, breachBody string) *testEnv {
	t.Helper()

	hits := 0
	breachSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if breachStatus != http.StatusOK {
			w.WriteHeader(breachStatus)
			return
		}
		_, _ = w.Write([]byte(breachBody))
	}))
	t.Cleanup(breachSrv.Close)

	rangeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pwnedSuffix + ":3861493\r\n00D4F6E8FA6EECAD2A3AA415EEC418D38EC:2"))
	}))
	t.Cleanup(rangeSrv.Close)

	cfg := &config.Config{
		AppName:       "breachboard-test",
		AppEnv:        "development",
		DBDriver:      "sqlite",
		DBConnection:  filepath.Join(t.TempDir(), "test.db"),
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		BreachAPIURL:  breachSrv.URL,
		PwnedRangeURL: rangeSrv.URL,
		LookupTimeout: 2 * time.Second,
	}

	application, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	server := httptest.NewServer(routes.SetupRoutes(application))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		server:     server,
		client:     &http.Client{Jar: jar},
		breachHits: &hits,
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// noRedirectClient returns a client sharing the env's cookie jar that stops
// at the first redirect, so gate behavior can be asserted directly.
func (e *testEnv) noRedirectClient() *http.Client {
	return &http.Client{
		Jar: e.client.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestRegisterLoginDashboardScenario(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[{"Name":"A"},{"Name":"B"},{"Name":"C"}]`)

	// Register establishes a session and lands on a fresh dashboard
	resp := env.postForm(t, "/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(100), body["score"])
	assert.Equal(t, "never", body["lookup_status"])

	// Refresh against an upstream reporting 3 breaches
	resp = env.postForm(t, "/app/dashboard", url.Values{"email": {"a@x.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(3), body["breaches_count"])
	assert.Equal(t, float64(70), body["score"])
	assert.Equal(t, "verified", body["lookup_status"])

	// The result is persisted, not just rendered
	resp = env.get(t, "/app/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(3), body["breaches_count"])
	assert.Equal(t, float64(70), body["score"])

	// Password check: suffix is present in the mocked range response
	resp = env.postForm(t, "/app/password-check", url.Values{"password": {"password"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "breached", body["verdict"])

	// Logout tears the session down; the dashboard redirects to login
	resp = env.postForm(t, "/auth/logout", url.Values{})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode) // followed to /login
	resp.Body.Close()

	raw, err := env.noRedirectClient().Get(env.server.URL + "/app/dashboard")
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusSeeOther, raw.StatusCode)
	assert.Equal(t, "/login", raw.Header.Get("Location"))
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	env := newTestEnv(t, http.StatusNotFound, "")

	resp := env.postForm(t, "/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A second registration for the same email fails from a fresh session
	other := newSession(t, env)
	resp, err := other.PostForm(env.server.URL+"/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw2"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginFailuresAreUndifferentiated(t *testing.T) {
	env := newTestEnv(t, http.StatusNotFound, "")

	resp := env.postForm(t, "/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	wrongPass := newSession(t, env)
	resp, err := wrongPass.PostForm(env.server.URL+"/auth/login", url.Values{"email": {"a@x.com"}, "password": {"nope"}})
	require.NoError(t, err)
	wrongBody := decodeBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	noAccount := newSession(t, env)
	resp, err = noAccount.PostForm(env.server.URL+"/auth/login", url.Values{"email": {"ghost@x.com"}, "password": {"nope"}})
	require.NoError(t, err)
	ghostBody := decodeBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Identical error text: existence of the account does not leak
	assert.Equal(t, wrongBody["error"], ghostBody["error"])
}

func TestUnauthenticatedRefreshNeverReachesUpstream(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[{"Name":"A"}]`)

	anon := newSession(t, env)
	resp, err := anon.PostForm(env.server.URL+"/app/dashboard", url.Values{"email": {"a@x.com"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	// Redirected to login, handler never ran, upstream never contacted
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, *env.breachHits)
}

func TestDegradedLookupDoesNotFakeCleanScore(t *testing.T) {
	env := newTestEnv(t, http.StatusUnauthorized, "")

	resp := env.postForm(t, "/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.postForm(t, "/app/dashboard", url.Values{"email": {"a@x.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "degraded", body["lookup_status"])
	assert.Contains(t, body["tip"], "not verified")
}

func TestLookupOutageUpdatesNothing(t *testing.T) {
	env := newTestEnv(t, http.StatusInternalServerError, "")

	resp := env.postForm(t, "/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.postForm(t, "/app/dashboard", url.Values{"email": {"a@x.com"}})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	// The record still shows the registration defaults
	resp = env.get(t, "/app/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(0), body["breaches_count"])
	assert.Equal(t, float64(100), body["score"])
	assert.Equal(t, "never", body["lookup_status"])
}

func TestBackupExportExcludesPasswordHash(t *testing.T) {
	env := newTestEnv(t, http.StatusNotFound, "")

	resp := env.postForm(t, "/auth/register", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.get(t, "/app/backup")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	body := decodeBody(t, resp)
	assert.Equal(t, "a@x.com", body["email"])
	_, hasHash := body["password_hash"]
	assert.False(t, hasHash)
	for key, value := range body {
		if s, ok := value.(string); ok {
			assert.NotContains(t, s, "$2a$", "bcrypt hash leaked via %q", key)
		}
	}
}

func newSession(t *testing.T, env *testEnv) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}
