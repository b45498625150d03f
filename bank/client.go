// Package bank talks to the banking REST API. Client performs the calls and
// turns every problem into a core.Failure; API routes reads through the
// query cache and declares the tags each call provides or invalidates.
package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/deltegui/bankconsole/core"
)

const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger.With().Str("component", "bank").Logger(),
	}
}

type call struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do performs c and decodes the answer into out, which may be nil.
func (client *Client) do(ctx context.Context, c call, out any) error {
	target := client.baseURL + c.path
	if len(c.query) > 0 {
		target += "?" + c.query.Encode()
	}
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		if err != nil {
			return &core.Failure{Kind: core.FailureParse, Detail: err.Error(), Err: err}
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, c.method, target, body)
	if err != nil {
		return &core.Failure{Kind: core.FailureUnknown, Detail: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	res, err := client.http.Do(req)
	if err != nil {
		failure := transportFailure(err)
		client.log.Warn().Err(err).Str("method", c.method).Str("path", c.path).Msg("banking api unreachable")
		return failure
	}
	defer res.Body.Close()
	client.log.Debug().
		Str("method", c.method).
		Str("path", c.path).
		Int("status", res.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("banking api call")

	if res.StatusCode >= http.StatusBadRequest {
		return httpFailure(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &core.Failure{Kind: core.FailureParse, Code: res.StatusCode, Detail: err.Error(), Err: err}
	}
	return nil
}

func transportFailure(err error) *core.Failure {
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &core.Failure{Kind: core.FailureTimeout, Detail: err.Error(), Err: err}
	}
	return &core.Failure{Kind: core.FailureNetwork, Detail: err.Error(), Err: err}
}

// httpFailure keeps the "message" of a JSON error body, or the raw body
// when it is something else.
func httpFailure(res *http.Response) *core.Failure {
	failure := &core.Failure{Kind: core.FailureHTTP, Code: res.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return failure
	}
	var message struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &message) == nil && message.Message != "" {
		failure.Message = message.Message
		return failure
	}
	failure.Data = strings.TrimSpace(string(raw))
	return failure
}

func (client *Client) CoreLogin(ctx context.Context, credentials Credentials) (AuthResponse, error) {
	return client.login(ctx, "/api/v1/auth/core/login", credentials)
}

func (client *Client) MerchantLogin(ctx context.Context, credentials Credentials) (AuthResponse, error) {
	return client.login(ctx, "/api/v1/auth/merchant/login", credentials)
}

func (client *Client) login(ctx context.Context, path string, credentials Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := client.do(ctx, call{method: http.MethodPost, path: path, body: credentials}, &out)
	if err != nil {
		return AuthResponse{}, err
	}
	if out.Token == "" {
		return AuthResponse{}, &core.Failure{Kind: core.FailureParse, Detail: "login answer without token"}
	}
	return out, nil
}

func get[T any](ctx context.Context, client *Client, token, path string, query url.Values) (any, error) {
	var out T
	if err := client.do(ctx, call{method: http.MethodGet, path: path, query: query, token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func send[T any](ctx context.Context, client *Client, token, method, path string, body any) (T, error) {
	var out T
	err := client.do(ctx, call{method: method, path: path, token: token, body: body}, &out)
	return out, err
}

func pathf(format string, ids ...string) string {
	escaped := make([]any, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, escaped...)
}
