package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/trungvq/workmate/internal/logger"
)

const defaultTokenEndpoint = "https://oauth2.googleapis.com/token"

// tokenFile mirrors the token.json layout written by Google's OAuth tooling.
type tokenFile struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// TokenSource loads an OAuth token from a file and refreshes it when expired.
// Refresh is internally synchronized: concurrent sessions sharing one source
// never race on refreshing or rewriting the token file.
type TokenSource struct {
	mu            sync.Mutex
	path          string
	clientID      string
	clientSecret  string
	tokenEndpoint string
	http          *resty.Client

	cur    tokenFile
	loaded bool
}

// NewTokenSource creates a token source backed by the given token file.
// clientID/clientSecret override the values stored in the file when non-empty.
func NewTokenSource(path, clientID, clientSecret string) *TokenSource {
	return &TokenSource{
		path:          path,
		clientID:      clientID,
		clientSecret:  clientSecret,
		tokenEndpoint: defaultTokenEndpoint,
		http:          resty.New().SetTimeout(15 * time.Second),
	}
}

// Token implements Credentials.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.loaded {
		if err := ts.load(); err != nil {
			return "", err
		}
	}

	// Refresh a minute early so in-flight requests don't hit expiry.
	if ts.cur.Expiry.IsZero() || time.Until(ts.cur.Expiry) > time.Minute {
		return ts.cur.Token, nil
	}
	if err := ts.refresh(ctx); err != nil {
		return "", err
	}
	return ts.cur.Token, nil
}

func (ts *TokenSource) load() error {
	raw, err := os.ReadFile(ts.path)
	if err != nil {
		return fmt.Errorf("không tìm thấy file token %q: %w", ts.path, err)
	}
	if err := json.Unmarshal(raw, &ts.cur); err != nil {
		return fmt.Errorf("file token %q không hợp lệ: %w", ts.path, err)
	}
	if ts.clientID == "" {
		ts.clientID = ts.cur.ClientID
	}
	if ts.clientSecret == "" {
		ts.clientSecret = ts.cur.ClientSecret
	}
	ts.loaded = true
	return nil
}

func (ts *TokenSource) refresh(ctx context.Context) error {
	if ts.cur.RefreshToken == "" {
		return fmt.Errorf("access token đã hết hạn và không có refresh token")
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := ts.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     ts.clientID,
			"client_secret": ts.clientSecret,
			"refresh_token": ts.cur.RefreshToken,
			"grant_type":    "refresh_token",
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(ts.tokenEndpoint)
	if err != nil {
		return fmt.Errorf("làm mới token thất bại: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("làm mới token thất bại: HTTP %d: %s", resp.StatusCode(), resp.Body())
	}

	ts.cur.Token = out.AccessToken
	ts.cur.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)

	if err := ts.save(); err != nil {
		// A stale file only costs an extra refresh next run.
		logger.L.Warn("failed to persist refreshed token", "path", ts.path, "error", err)
	}
	return nil
}

func (ts *TokenSource) save() error {
	raw, err := json.MarshalIndent(ts.cur, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ts.path, raw, 0o600)
}
