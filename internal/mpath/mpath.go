// Package mpath implements the m-Path API client: the authenticated request
// wrapper with its retry policy, the resource fetchers and the uploaders.
package mpath

import (
	"errors"
	"net/http"
	"time"

	"github.com/mpath-tools/mpathkit/internal/auth"
	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/mpath-tools/mpathkit/internal/dump"
)

var (
	// ErrAuth is returned when the platform rejects the token (HTTP 401).
	// Retrying with the same credentials cannot succeed.
	ErrAuth = errors.New("authentication rejected by the platform")

	// ErrClient is returned for other 4xx responses and malformed replies.
	ErrClient = errors.New("request rejected by the platform")

	// ErrTransient is returned once the retry policy is exhausted on
	// network errors, 5xx responses, or the platform's -1 status sentinel.
	ErrTransient = errors.New("transient platform failure")
)

// Client talks to one m-Path tenant on behalf of one practitioner.
type Client struct {
	baseURL  string
	userCode string
	issuer   auth.Issuer
	tokenTTL time.Duration

	http   *http.Client
	policy Policy
	sleep  func(time.Duration)
	now    func() time.Time

	dumps dump.Writer
}

type options struct {
	baseURL  string
	tokenTTL time.Duration
	http     *http.Client
	policy   Policy
	sleep    func(time.Duration)
	now      func() time.Time
	dumps    dump.Writer
}

// Options represents an optional function to override Client default values.
type Options func(*options)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Options {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(p Policy) Options {
	return func(o *options) { o.policy = p }
}

// WithDumps enables raw payload persistence below dir.
func WithDumps(w dump.Writer) Options {
	return func(o *options) { o.dumps = w }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Options {
	return func(o *options) { o.http = h }
}

// WithTokenTTL overrides the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Options {
	return func(o *options) { o.tokenTTL = ttl }
}

// WithSleep overrides the backoff sleep function. Tests inject a recorder.
func WithSleep(f func(time.Duration)) Options {
	return func(o *options) { o.sleep = f }
}

// WithClock overrides the time source used for stamps.
func WithClock(f func() time.Time) Options {
	return func(o *options) { o.now = f }
}

// New returns a Client for the given practitioner code.
// A fresh token is issued per request attempt, never reused past its ttl.
func New(issuer auth.Issuer, userCode string, args ...Options) (*Client, error) {
	if userCode == "" {
		return nil, errors.New("user code cannot be an empty string")
	}

	opts := options{
		baseURL:  constants.DefaultBaseURL,
		tokenTTL: constants.DefaultTokenTTLMinutes * time.Minute,
		http:     &http.Client{Timeout: 30 * time.Second},
		policy:   DefaultPolicy(),
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Client{
		baseURL:  opts.baseURL,
		userCode: userCode,
		issuer:   issuer,
		tokenTTL: opts.tokenTTL,
		http:     opts.http,
		policy:   opts.policy,
		sleep:    opts.sleep,
		now:      opts.now,
		dumps:    opts.dumps,
	}, nil
}
