package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA-1("password") = 5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8
const (
	pwnedSuffix = "1E4C9B93F3F0682250B6CF8331B7EE68FD8"
)

func newTestClient(breachURL, rangeURL string) *BreachClient {
	return NewBreachClient(breachURL, rangeURL, "test-key", "breachboard-test", 2*time.Second)
}

func TestEmailBreachesFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/breachedaccount/a@x.com", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("hibp-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"Name":"Adobe"},{"Name":"LinkedIn"},{"Name":"Dropbox"}]`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	count, status, err := client.EmailBreaches(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, LookupVerified, status)
	assert.Equal(t, 3, count)
}

func TestEmailBreachesCleanNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	count, status, err := client.EmailBreaches(context.Background(), "clean@x.com")
	require.NoError(t, err)
	assert.Equal(t, LookupVerified, status)
	assert.Equal(t, 0, count)
}

func TestEmailBreachesUnauthorizedIsDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	count, status, err := client.EmailBreaches(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, LookupDegraded, status)
	assert.Equal(t, 0, count)
}

func TestEmailBreachesServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	_, _, err := client.EmailBreaches(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestEmailBreachesTransportErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := newTestClient(srv.URL, srv.URL)
	_, _, err := client.EmailBreaches(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestPasswordPwnedMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only the 5-character prefix ever reaches the service
		assert.Equal(t, "/5BAA6", r.URL.Path)
		_, _ = w.Write([]byte("0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n" + pwnedSuffix + ":3861493\r\n00D4F6E8FA6EECAD2A3AA415EEC418D38EC:2"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	pwned, err := client.PasswordPwned(context.Background(), "password")
	require.NoError(t, err)
	assert.True(t, pwned)
}

func TestPasswordPwnedMatchIsCaseInsensitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1e4c9b93f3f0682250b6cf8331b7ee68fd8:42"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	pwned, err := client.PasswordPwned(context.Background(), "password")
	require.NoError(t, err)
	assert.True(t, pwned)
}

func TestPasswordPwnedNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n00D4F6E8FA6EECAD2A3AA415EEC418D38EC:2"))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	pwned, err := client.PasswordPwned(context.Background(), "password")
	require.NoError(t, err)
	assert.False(t, pwned)
}

func TestPasswordPwnedFailsClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, srv.URL)
	_, err := client.PasswordPwned(context.Background(), "password")
	assert.ErrorIs(t, err, ErrLookupFailed)
}
