// Package google implements the Calendar, Tasks and Gmail tools as thin
// wrappers over the Google REST APIs. Result strings are user-facing and kept
// in Vietnamese, matching the prompts the agents run with.
package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Credentials supplies a bearer token for each request.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed access token, e.g. one handed in by a front end.
type StaticToken string

// Token implements Credentials.
func (s StaticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

// apiError carries the HTTP status so callers can branch on not-found without
// parsing message text.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var ae *apiError
	return asAPIError(err, &ae) && ae.Status == http.StatusNotFound
}

func asAPIError(err error, target **apiError) bool {
	for err != nil {
		if ae, ok := err.(*apiError); ok {
			*target = ae
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// restClient wraps resty with per-request bearer auth.
type restClient struct {
	http  *resty.Client
	creds Credentials
}

// Option adjusts a service's underlying REST client.
type Option func(*restClient)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *restClient) { c.http.SetBaseURL(u) }
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *restClient) { c.http.SetTimeout(d) }
}

func newRESTClient(baseURL string, creds Credentials, opts ...Option) *restClient {
	c := &restClient{
		http:  resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second),
		creds: creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request. out, when non-nil, receives the decoded JSON body.
func (c *restClient) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	tok, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("lấy access token thất bại: %w", err)
	}

	req := c.http.R().SetContext(ctx).SetAuthToken(tok)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		// The APIs always answer JSON; forcing the content type keeps decoding
		// working even when a proxy mislabels the response.
		req.SetResult(out).ForceContentType("application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &apiError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}
