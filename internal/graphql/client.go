// Package graphql is the single point of network access: a GraphQL-over-HTTP
// client with a composable link chain. The chain order matters and mirrors
// the session design: error observation first, then per-request auth header
// injection, then the actual transport.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

// Request is a single GraphQL operation. Files, when present, switch the
// transport to a multipart upload.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Files         []Upload       `json:"-"`
}

// Response is the standard GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors ErrorList       `json:"errors,omitempty"`
}

// Link handles a request, usually by delegating to the next link in the chain.
type Link interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TokenSource returns the current bearer token, or "" when unauthenticated.
// It is read fresh on every request so a just-refreshed token is always used.
type TokenSource func() string

// Config assembles a client. Invalidate is called (at most once concurrently)
// when any response carries an authentication error; the session store injects
// its forced-logout here instead of the client reaching into session state.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	Token      TokenSource
	Invalidate func()
	Logger     *applog.Logger
}

// Client sends operations through the link chain. It holds no session state.
type Client struct {
	link   Link
	logger *applog.Logger
}

// New builds the chain: error link -> auth link -> transport link.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentGraphQL)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var chain Link = newTransport(cfg.Endpoint, timeout, logger)
	chain = &authLink{next: chain, token: cfg.Token}
	chain = &errorLink{next: chain, invalidate: cfg.Invalidate, logger: logger}

	return &Client{link: chain, logger: logger}
}

// Do executes the request and returns the raw response envelope. GraphQL
// application errors are returned as an ErrorList error alongside any partial
// data.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.link.Do(ctx, req)

	c.logger.DebugContext(ctx, "operation finished",
		applog.FieldRequestID, requestID,
		applog.FieldGQLOp, req.OperationName,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return resp, resp.Errors
	}
	return resp, nil
}

// Run executes the request and unmarshals the data payload into out.
func (c *Client) Run(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.OperationName, err)
	}
	return nil
}

// authLink injects the bearer header from the token source on every outgoing
// request. The token is read per request, never cached.
type authLink struct {
	next  Link
	token TokenSource
}

func (l *authLink) Do(ctx context.Context, req *Request) (*Response, error) {
	token := ""
	if l.token != nil {
		token = l.token()
	}
	return l.next.Do(withBearer(ctx, token), req)
}

type bearerKey struct{}

func withBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}

// errorLink inspects every response for authentication failures and triggers
// the injected session invalidation. Concurrent failures from parallel
// in-flight requests must not race to invalidate more than once, so the
// trigger is guarded by an in-flight flag reset only after the invalidation
// settles.
type errorLink struct {
	next       Link
	invalidate func()
	logger     *applog.Logger

	mu       sync.Mutex
	inFlight bool
}

func (l *errorLink) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := l.next.Do(ctx, req)

	checkErr := err
	if checkErr == nil && resp != nil && len(resp.Errors) > 0 {
		checkErr = resp.Errors
	}
	if checkErr != nil && IsAuthError(checkErr) {
		l.trigger(req.OperationName)
	}
	return resp, err
}

func (l *errorLink) trigger(operation string) {
	if l.invalidate == nil {
		return
	}

	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return
	}
	l.inFlight = true
	l.mu.Unlock()

	l.logger.Warn("authentication error intercepted, invalidating session",
		applog.FieldGQLOp, operation)

	go func() {
		defer func() {
			l.mu.Lock()
			l.inFlight = false
			l.mu.Unlock()
		}()
		l.invalidate()
	}()
}
