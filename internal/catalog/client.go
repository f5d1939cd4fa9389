// SPDX-License-Identifier: MIT

// Package catalog is the client for the upstream media catalog's GraphQL API.
//
// The upstream is loosely typed: the same operation has been observed to
// answer with the standard {data, errors} envelope or with a flattened
// payload missing the data wrapper. Every execute call therefore decodes
// with a primary schema and falls back to the alternate one before giving up.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/satchel/internal/cache"
	"github.com/ManuGH/satchel/internal/log"
	"github.com/ManuGH/satchel/internal/resilience"
	"golang.org/x/sync/singleflight"
)

// Client executes GraphQL operations against a single catalog endpoint.
// It holds no per-request mutable state and is safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	breaker  *resilience.Breaker
	cache    cache.Cache
	cacheTTL time.Duration
	group    singleflight.Group
	logger   zerolog.Logger
}

// Options configures a Client beyond the required endpoint and key.
type Options struct {
	Timeout  time.Duration // HTTP timeout, default 30s
	Cache    cache.Cache   // lookup cache for tags/saved filters, default no-op
	CacheTTL time.Duration // default 10m
	// Breaker overrides the default circuit breaker. A custom breaker
	// should carry a failure classifier so terminal errors (401, 4xx,
	// cancellation) do not count against its threshold.
	Breaker *resilience.Breaker
}

// New creates a catalog client for the given server base URL.
func New(baseURL, apiKey string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNoOpCache()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker("catalog", 0, 0,
			resilience.WithFailureClassifier(upstreamFault))
	}
	return &Client{
		endpoint: u.String() + "/graphql",
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		breaker:  breaker,
		cache:    c,
		cacheTTL: ttl,
		logger:   log.WithComponent("catalog"),
	}, nil
}

// request is the upstream wire format for a GraphQL POST.
type request struct {
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables"`
	Query         string `json:"query"`
}

// envelope is the standard GraphQL response shape.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Path    []any  `json:"path,omitempty"`
	} `json:"errors"`
}

// post sends one operation and returns the raw response body.
func (c *Client) post(ctx context.Context, op string, vars any, query string) ([]byte, error) {
	body, err := json.Marshal(request{OperationName: op, Variables: vars, Query: query})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Dual-channel auth: servers in the wild expect one or the other.
	req.Header.Set("ApiKey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var raw []byte
	err = c.breaker.Execute(func() error {
		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &NetworkError{Cause: err}
		}
		defer res.Body.Close() //nolint:errcheck

		switch {
		case res.StatusCode == http.StatusUnauthorized:
			return ErrAuthFailed
		case res.StatusCode != http.StatusOK:
			return &ServerError{Code: res.StatusCode}
		}

		raw, err = io.ReadAll(io.LimitReader(res.Body, 32<<20))
		if err != nil {
			return &NetworkError{Cause: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyResponse
	}
	return raw, nil
}

// execute runs op and decodes the payload under key into T using the
// two-schema policy: first the {data, errors} envelope, then the flattened
// {<key>: ...} shape the upstream emits for some operations. If both fail the
// returned DecodeError carries the first attempt's detail.
func execute[T any](ctx context.Context, c *Client, op, key string, vars any, query string) (*T, error) {
	if log.RequestIDFromContext(ctx) == "" {
		ctx = log.ContextWithRequestID(ctx, uuid.NewString())
	}
	logger := log.WithContext(ctx, c.logger)

	raw, err := c.post(ctx, op, vars, query)
	if err != nil {
		logger.Debug().Err(err).Str(log.FieldOperation, op).Msg("catalog request failed")
		return nil, err
	}

	var env envelope
	directErr := json.Unmarshal(raw, &env)
	if directErr == nil && len(env.Errors) > 0 {
		// GraphQL-level failure: partial data is never surfaced as success.
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		logger.Warn().Str(log.FieldOperation, op).Strs("errors", msgs).Msg("upstream reported query errors")
		return nil, &QueryError{Operation: op, Messages: msgs}
	}

	if directErr == nil {
		out, err := extract[T](env.Data, key)
		if err == nil {
			return out, nil
		}
		directErr = err
	}

	// Alternate shape: payload at the top level, no data wrapper.
	if out, err := extract[T](raw, key); err == nil {
		logger.Debug().Str(log.FieldOperation, op).Msg("decoded via alternate response shape")
		return out, nil
	}

	return nil, &DecodeError{Operation: op, Detail: directErr}
}

// extract unmarshals the object under key within doc.
func extract[T any](doc json.RawMessage, key string) (*T, error) {
	if len(doc) == 0 || string(doc) == "null" {
		return nil, fmt.Errorf("response has no data")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, err
	}
	payload, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("response is missing %q", key)
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
