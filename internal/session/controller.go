// Package session owns the authenticated/unauthenticated session state and
// the routing decisions derived from it.
package session

import (
	"sync"

	"go.uber.org/zap"
)

// TokenStore persists the bearer credential across the two storage tiers.
type TokenStore interface {
	Read() (string, bool)
	Write(token string, durable bool) error
	Clear() error
}

// HeaderSink receives the shared outbound bearer header. Only the
// controller's two transitions are allowed to write it.
type HeaderSink interface {
	SetToken(token string)
	ClearToken()
}

// Controller is a two-state machine: Unauthenticated and Authenticated.
// The initial state is resolved once at construction from the token store;
// afterwards it changes only on login, logout, or a server-signaled 401.
// Expiry is never tracked locally, it is discovered through rejected
// requests.
type Controller struct {
	store TokenStore
	sink  HeaderSink
	log   *zap.Logger

	mu             sync.Mutex
	authenticated  bool
	onForcedLogout func()
}

func NewController(store TokenStore, sink HeaderSink, log *zap.Logger) *Controller {
	c := &Controller{store: store, sink: sink, log: log}
	if token, ok := store.Read(); ok {
		sink.SetToken(token)
		c.authenticated = true
	}
	return c
}

// IsAuthenticated reports the current session state.
func (c *Controller) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// LoginSucceeded persists the credential to the caller-chosen tier and
// installs it as the shared outbound header.
func (c *Controller) LoginSucceeded(token string, remember bool) error {
	if err := c.store.Write(token, remember); err != nil {
		return err
	}
	c.sink.SetToken(token)
	c.mu.Lock()
	c.authenticated = true
	c.mu.Unlock()
	return nil
}

// Logout clears the credential from both tiers and removes the header.
// Logout is purely local, there is no server call.
func (c *Controller) Logout() {
	c.invalidate()
}

// AuthFailed handles a server-signaled credential rejection. Besides the
// usual teardown it fires the forced-logout handler immediately, since the
// rejection surfaces inside a response hook with no render in progress.
func (c *Controller) AuthFailed() {
	c.invalidate()
	c.log.Warn("session invalidated by authentication failure")

	c.mu.Lock()
	handler := c.onForcedLogout
	c.mu.Unlock()
	if handler != nil {
		handler()
	}
}

// SetForcedLogoutHandler registers the callback invoked when AuthFailed
// fires. Register once at shell start and pass nil on teardown so a stale
// handler cannot fire twice.
func (c *Controller) SetForcedLogoutHandler(fn func()) {
	c.mu.Lock()
	c.onForcedLogout = fn
	c.mu.Unlock()
}

func (c *Controller) invalidate() {
	if err := c.store.Clear(); err != nil {
		c.log.Error("error clearing stored token", zap.Error(err))
	}
	c.sink.ClearToken()
	c.mu.Lock()
	c.authenticated = false
	c.mu.Unlock()
}
