// Package api is the HTTP boundary to the remote meal-ordering service.
// Responses are normalized into strict domain types in a single decoding
// step; monetary fields are converted to minor units here and nowhere
// else. The service envelope is
// {success, data, message|error, timestamp}.
package api

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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ganghaofan/mealorder/internal/config"
	"github.com/ganghaofan/mealorder/internal/fault"
	"github.com/ganghaofan/mealorder/internal/session"
)

// Errors surfaced by the client, all classified fault.Upstream.
var (
	ErrUnauthorized = errors.New("authentication rejected")
	ErrNotFound     = errors.New("resource not found")
	ErrRemote       = errors.New("service reported failure")
	ErrMalformed    = errors.New("malformed response payload")
)

// Client issues requests against the remote service on behalf of one
// session.
type Client struct {
	httpc   *http.Client
	baseURL string
	prefix  string
	sess    *session.Session
	log     *zap.Logger
	debug   bool
}

// New builds a client from config. logger may be nil.
func New(cfg *config.Config, sess *session.Session, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpc:   &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  cfg.APIPrefix,
		sess:    sess,
		log:     logger,
		debug:   cfg.Debug,
	}
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorMsg  string          `json:"error"`
	Timestamp string          `json:"timestamp"`
}

func (e *envelope) reason() string {
	if e.ErrorMsg != "" {
		return e.ErrorMsg
	}
	return e.Message
}

// do executes one request. out, when non-nil, receives the envelope's
// data field. A nil body sends no payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + c.prefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.sess.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	if c.debug {
		c.log.Debug("request",
			zap.String("method", method),
			zap.String("url", u),
			zap.String("request_id", req.Header.Get("X-Request-ID")))
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fault.Wrap(fault.Upstream, method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fault.Wrap(fault.Upstream, method+" "+path, err)
	}

	if c.debug {
		c.log.Debug("response",
			zap.String("method", method),
			zap.String("url", u),
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(raw)))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The token is no longer honored; drop the session.
		c.sess.Invalidate()
		return fault.Wrap(fault.Upstream,
			fmt.Sprintf("%s %s: HTTP %d", method, path, resp.StatusCode), ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fault.Wrap(fault.Upstream,
			fmt.Sprintf("%s %s", method, path), ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		reason := httpReason(raw)
		return fault.Wrap(fault.Upstream,
			fmt.Sprintf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, reason), ErrRemote)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fault.Wrap(fault.Upstream, method+" "+path, ErrMalformed)
	}
	if !env.Success {
		return fault.Wrap(fault.Upstream,
			fmt.Sprintf("%s %s: %s", method, path, env.reason()), ErrRemote)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fault.Wrap(fault.Upstream, method+" "+path+": empty data", ErrMalformed)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fault.Wrap(fault.Upstream, method+" "+path, ErrMalformed)
	}
	return nil
}

// httpReason pulls an error message out of a non-2xx body when the
// service managed to send its envelope.
func httpReason(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if r := env.reason(); r != "" {
			return r
		}
	}
	return "no detail"
}
