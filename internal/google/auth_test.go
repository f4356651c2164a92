package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTokenFile(t *testing.T, tf tokenFile) string {
	t.Helper()
	raw, err := json.Marshal(tf)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestTokenSource_LoadsFreshToken(t *testing.T) {
	path := writeTokenFile(t, tokenFile{
		Token:  "fresh",
		Expiry: time.Now().Add(time.Hour),
	})

	ts := NewTokenSource(path, "", "")
	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", tok)
}

func TestTokenSource_ZeroExpiryNeverRefreshes(t *testing.T) {
	path := writeTokenFile(t, tokenFile{Token: "forever"})

	ts := NewTokenSource(path, "", "")
	ts.tokenEndpoint = "http://127.0.0.1:0" // would fail if contacted
	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "forever", tok)
}

func TestTokenSource_MissingFile(t *testing.T) {
	ts := NewTokenSource(filepath.Join(t.TempDir(), "absent.json"), "", "")
	_, err := ts.Token(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "không tìm thấy file token")
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "cid", r.PostForm.Get("client_id"))
		require.Equal(t, "sec", r.PostForm.Get("client_secret"))
		require.Equal(t, "rt", r.PostForm.Get("refresh_token"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "refreshed",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	path := writeTokenFile(t, tokenFile{
		Token:        "stale",
		RefreshToken: "rt",
		ClientID:     "cid",
		ClientSecret: "sec",
		Expiry:       time.Now().Add(-time.Minute),
	})

	ts := NewTokenSource(path, "", "")
	ts.tokenEndpoint = srv.URL

	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "refreshed", tok)
	require.EqualValues(t, 1, refreshes.Load())

	// The refreshed token is persisted back to the file.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved tokenFile
	require.NoError(t, json.Unmarshal(raw, &saved))
	require.Equal(t, "refreshed", saved.Token)
	require.True(t, saved.Expiry.After(time.Now()))

	// Subsequent calls serve the refreshed token without another round trip.
	tok, err = ts.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "refreshed", tok)
	require.EqualValues(t, 1, refreshes.Load())
}

func TestTokenSource_RefreshWithoutRefreshToken(t *testing.T) {
	path := writeTokenFile(t, tokenFile{
		Token:  "stale",
		Expiry: time.Now().Add(-time.Minute),
	})

	ts := NewTokenSource(path, "", "")
	_, err := ts.Token(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "không có refresh token")
}

func TestTokenSource_ConcurrentCallersRefreshOnce(t *testing.T) {
	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "refreshed",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	path := writeTokenFile(t, tokenFile{
		Token:        "stale",
		RefreshToken: "rt",
		ClientID:     "cid",
		ClientSecret: "sec",
		Expiry:       time.Now().Add(-time.Minute),
	})

	ts := NewTokenSource(path, "", "")
	ts.tokenEndpoint = srv.URL

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := ts.Token(context.Background())
			require.NoError(t, err)
			require.Equal(t, "refreshed", tok)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, refreshes.Load())
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc", tok)
}
