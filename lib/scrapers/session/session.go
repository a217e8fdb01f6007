// Package session holds the authentication state machine shared by
// the platform clients. Data operations check the state up front
// instead of relying on an auth failure surfacing from deep inside a
// network call.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrLoginFailed marks a login the site actively rejected, as opposed
// to a network failure while logging in. Checked with errors.Is.
var ErrLoginFailed = errors.New("login rejected")

type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

// AuthenticationError means the session is not authenticated or the
// site rejected the login. Never retried automatically, the caller
// decides whether to run a fresh login.
type AuthenticationError struct {
	Message string
	cause   error
}

func (e *AuthenticationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("authentication: %s: %s", e.Message, e.cause.Error())
	}
	return "authentication: " + e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.cause
}

func NewError(message string, cause error) *AuthenticationError {
	return &AuthenticationError{Message: message, cause: cause}
}

// Guard serializes state transitions for one platform session. The
// credential itself lives in the owning client's cookie jar and is
// never shared across sessions.
type Guard struct {
	mu    sync.Mutex
	state State
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Require fails with an AuthenticationError unless the session is
// authenticated. Called before any network request is issued.
func (g *Guard) Require() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Authenticated {
		return &AuthenticationError{
			Message: fmt.Sprintf("session is %s, login first", g.state),
		}
	}
	return nil
}

// Begin moves to authenticating. A login already in progress is
// reported as an error so two goroutines don't race the login form.
func (g *Guard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Authenticating {
		return &AuthenticationError{Message: "login already in progress"}
	}
	g.state = Authenticating
	return nil
}

// Succeed marks the login complete.
func (g *Guard) Succeed() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Authenticated
}

// Reset forces the session back to unauthenticated, used on logout
// and on an authentication-required response from a downstream call.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Unauthenticated
}
