package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"libportal/internal/logging"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/metrics"

	"github.com/google/uuid"
)

const maxErrorBody = 64 << 10

// Session is the side of the auth coordinator the transport needs: the
// bearer token to attach and the hook to run when the backend rejects it.
type Session interface {
	Token() string
	HandleUnauthorized()
}

// Client is the single request/response collaborator every module talks to.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.ClientMetrics
	logger  *slog.Logger

	mu      sync.RWMutex
	session Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind attaches the session after construction; the coordinator itself
// needs the client, so the two are wired in two steps.
func (c *Client) Bind(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) currentSession() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		r = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, http.MethodPost, path, query, contentType, r, out)
}

// PostForm sends an application/x-www-form-urlencoded body; only the login
// exchange uses it.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	session := c.currentSession()
	if session != nil {
		if token := session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log(ctx).With("method", method, "path", path, "request_id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, path, 0, time.Since(start))
		log.Warn("request failed", "error", err)
		return apperr.Transport(err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Debug("request ok", "status", resp.StatusCode, "latency", time.Since(start))
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return apperr.Transport(fmt.Errorf("decode %s response: %w", path, err))
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := ParseDetail(raw)
	log.Info("request rejected", "status", resp.StatusCode, "detail", detail)

	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.ObserveUnauthorized()
		if session != nil {
			session.HandleUnauthorized()
		}
	}
	return apperr.FromStatus(resp.StatusCode, detail)
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.FromContext(ctx)
}

// ParseDetail pulls the human readable message out of an error body. It
// understands FastAPI ({"detail": "..."} and the 422 list form) and the
// {"error": {"message": "..."}} envelope.
func ParseDetail(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if body.Error != nil {
		return body.Error.Message
	}
	return ""
}
