package service

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrLookupFailed covers transport errors, timeouts and unexpected status
// codes from either lookup service. Callers must not persist anything and
// must not report a guessed-safe result when they see it.
var ErrLookupFailed = errors.New("breach lookup failed")

// LookupStatus classifies an email breach lookup response.
type LookupStatus int

const (
	// LookupVerified means the service gave an authoritative answer.
	LookupVerified LookupStatus = iota
	// LookupDegraded means the service was reachable but declined full
	// service (HTTP 401, typically a missing API key).
	LookupDegraded
)

// breachEntry mirrors one record of the breachedaccount response. Only the
// name is decoded; the count is all we derive from the list.
type breachEntry struct {
	Name string `json:"Name"`
}

// BreachClient talks to the two external lookup services: the breach-account
// API (keyed by email) and the pwned-passwords range API (k-anonymity).
type BreachClient struct {
	httpClient    *http.Client
	breachAPIURL  string
	pwnedRangeURL string
	apiKey        string
	userAgent     string
}

func NewBreachClient(breachAPIURL, pwnedRangeURL, apiKey, appName string, timeout time.Duration) *BreachClient {
	return &BreachClient{
		httpClient:    &http.Client{Timeout: timeout},
		breachAPIURL:  strings.TrimSuffix(breachAPIURL, "/"),
		pwnedRangeURL: strings.TrimSuffix(pwnedRangeURL, "/"),
		apiKey:        apiKey,
		userAgent:     appName + "/1.0",
	}
}

// EmailBreaches queries the breach-account service for an email.
// Classification:
//   - 200: verified, count = number of returned breach entries
//   - 404: verified, count 0 (the service's not-found answer for clean emails)
//   - 401: degraded, count 0 — caller must surface the advisory and must not
//     persist the count as a verified result
//   - anything else: ErrLookupFailed
func (c *BreachClient) EmailBreaches(ctx context.Context, email string) (int, LookupStatus, error) {
	endpoint := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false", c.breachAPIURL, url.PathEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, LookupDegraded, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("hibp-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, LookupDegraded, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var entries []breachEntry
		err = json.NewDecoder(resp.Body).Decode(&entries)
		if err != nil {
			return 0, LookupDegraded, fmt.Errorf("%w: decoding response: %v", ErrLookupFailed, err)
		}
		return len(entries), LookupVerified, nil
	case http.StatusNotFound:
		return 0, LookupVerified, nil
	case http.StatusUnauthorized:
		return 0, LookupDegraded, nil
	default:
		return 0, LookupDegraded, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}
}

// PasswordPwned checks a password against the leaked-password corpus using
// the k-anonymity range scheme: only the first 5 hex characters of the SHA-1
// digest leave the process. Any non-200 answer fails closed with
// ErrLookupFailed rather than reporting the password safe.
func (c *BreachClient) PasswordPwned(ctx context.Context, password string) (bool, error) {
	digest := fmt.Sprintf("%X", sha1.Sum([]byte(password)))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pwnedRangeURL+"/"+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: reading response: %v", ErrLookupFailed, err)
	}

	// Response lines are "SUFFIX:COUNT" for every leaked hash sharing the
	// prefix. Hex comparison is case-insensitive.
	for _, line := range strings.Split(string(body), "\n") {
		candidate, _, found := strings.Cut(strings.TrimSpace(line), ":")
		if found && strings.EqualFold(candidate, suffix) {
			return true, nil
		}
	}

	return false, nil
}
