// Package auth owns the session lifecycle: restore from secure storage,
// login, logout, and forced invalidation when the server rejects the token.
// Every teardown path funnels through the same sequence so no step can be
// missed: secure-token reset, cached-profile removal, in-memory reset, then
// GraphQL cache clear.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/models"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/prefs"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/secure"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/state"
)

// Status is the session state machine:
// uninitialized -> restoring -> {authenticated, unauthenticated}.
type Status string

const (
	StatusUninitialized   Status = "uninitialized"
	StatusRestoring       Status = "restoring"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Session is the observable session snapshot.
type Session struct {
	Status Status
	User   *models.User
}

// ErrMissingCredentials is returned before any network call when either
// login field is empty.
var ErrMissingCredentials = errors.New("username and password are required")

// ErrLoginFailed is the single generic login failure. Wrong username and
// wrong password produce exactly this error so accounts cannot be enumerated.
var ErrLoginFailed = errors.New("login failed, please check your credentials and try again")

// Store orchestrates login, logout, and session restore. The GraphQL client
// is attached after construction because the client's link chain needs this
// store's token source and invalidation callback.
type Store struct {
	tokens *secure.TokenStore
	prefs  *prefs.Store
	cache  *cache.Store
	logger *applog.Logger

	mu     sync.Mutex
	token  string
	client *graphql.Client

	session *state.Store[Session]
}

func New(tokens *secure.TokenStore, preferences *prefs.Store, queryCache *cache.Store, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Store{
		tokens:  tokens,
		prefs:   preferences,
		cache:   queryCache,
		logger:  logger.WithComponent(applog.ComponentAuth),
		session: state.New(Session{Status: StatusUninitialized}),
	}
}

// AttachClient closes the construction cycle between store and client.
func (s *Store) AttachClient(client *graphql.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

// Token is the graphql.TokenSource for the auth link. It is read fresh on
// every outgoing request.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Session returns the current session snapshot.
func (s *Store) Session() Session {
	return s.session.Get()
}

// Subscribe registers a session observer and returns an unsubscribe func.
func (s *Store) Subscribe(fn func(Session)) func() {
	return s.session.Subscribe(fn)
}

// InitFromStorage restores the session on startup. A cached profile is shown
// during restore (best effort, gates nothing); the secure token, if
// retrievable, is verified against the server before the session counts as
// authenticated. Any failure lands in unauthenticated with a full teardown.
func (s *Store) InitFromStorage(ctx context.Context) {
	restoring := Session{Status: StatusRestoring}
	var cached models.User
	if ok, err := s.prefs.GetJSON(ctx, prefs.ProfileKey, &cached); err == nil && ok {
		restoring.User = &cached
	}
	s.session.Set(restoring)

	token, err := s.tokens.Load(ctx)
	if err != nil || token == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "secure token not retrievable",
				applog.FieldSessionStep, "load_token", applog.FieldError, err.Error())
		}
		s.teardown(ctx)
		return
	}

	// Token goes into memory first so the verification request carries it.
	s.setToken(token)

	user, err := s.verify(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "session verification failed",
			applog.FieldSessionStep, "verify", applog.FieldError, err.Error())
		s.teardown(ctx)
		return
	}

	s.cacheProfile(ctx, user)
	s.session.Set(Session{Status: StatusAuthenticated, User: user})
	s.logger.InfoContext(ctx, "session restored", applog.FieldUserID, user.ID)
}

// Login authenticates with credentials. Empty fields short-circuit before any
// network call. Every server-side rejection surfaces as the same generic
// ErrLoginFailed.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	var result struct {
		Login struct {
			Token string `json:"token"`
		} `json:"login"`
	}
	err := s.clientRef().Run(ctx, &graphql.Request{
		Query:         graphql.QueryLogin,
		OperationName: graphql.OpLogin,
		Variables:     map[string]any{"username": username, "password": password},
	}, &result)
	if err != nil {
		s.logger.WarnContext(ctx, "login rejected", applog.FieldOperation, applog.OpLogin)
		return ErrLoginFailed
	}

	s.setToken(result.Login.Token)
	if err := s.tokens.Save(result.Login.Token); err != nil {
		s.logger.ErrorContext(ctx, "persisting token failed", applog.FieldError, err.Error())
	}

	// Re-verify identity with the fresh token before trusting the session.
	user, err := s.verify(ctx)
	if err != nil {
		s.teardown(ctx)
		return ErrLoginFailed
	}

	s.cacheProfile(ctx, user)
	s.session.Set(Session{Status: StatusAuthenticated, User: user})
	s.logger.InfoContext(ctx, "login succeeded", applog.FieldUserID, user.ID)
	return nil
}

// Logout tears the session down. In-memory state is reset before the cache
// clear so no in-flight request can pick up a stale token.
func (s *Store) Logout(ctx context.Context) {
	s.teardown(ctx)
	s.logger.InfoContext(ctx, "logged out")
}

// Invalidate is the error link's callback for server-reported auth failures.
// Deduplication of concurrent triggers happens in the link.
func (s *Store) Invalidate() {
	s.teardown(context.Background())
	s.logger.Warn("session invalidated by server")
}

func (s *Store) teardown(ctx context.Context) {
	if err := s.tokens.Reset(); err != nil {
		s.logger.WarnContext(ctx, "secure token reset failed", applog.FieldError, err.Error())
	}
	if err := s.prefs.Delete(ctx, prefs.ProfileKey); err != nil {
		s.logger.WarnContext(ctx, "cached profile removal failed", applog.FieldError, err.Error())
	}
	s.setToken("")
	s.session.Set(Session{Status: StatusUnauthenticated})
	// Best effort: the user is logging out regardless.
	s.cache.Clear()
}

func (s *Store) verify(ctx context.Context) (*models.User, error) {
	var result struct {
		Me models.User `json:"me"`
	}
	err := s.clientRef().Run(ctx, &graphql.Request{
		Query:         graphql.QueryMe,
		OperationName: graphql.OpMe,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result.Me, nil
}

func (s *Store) cacheProfile(ctx context.Context, user *models.User) {
	if err := s.prefs.SetJSON(ctx, prefs.ProfileKey, user); err != nil {
		s.logger.WarnContext(ctx, "caching profile failed", applog.FieldError, err.Error())
	}
}

func (s *Store) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Store) clientRef() *graphql.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}
