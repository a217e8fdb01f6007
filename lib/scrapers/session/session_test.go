package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuardLifecycle(t *testing.T) {
	var g Guard
	require.Equal(t, Unauthenticated, g.State())

	err := g.Require()
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)

	require.NoError(t, g.Begin())
	require.Equal(t, Authenticating, g.State())
	// second login attempt while one is in flight is rejected
	require.Error(t, g.Begin())

	g.Succeed()
	require.Equal(t, Authenticated, g.State())
	require.NoError(t, g.Require())

	g.Reset()
	require.Equal(t, Unauthenticated, g.State())
	require.Error(t, g.Require())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError("login request failed", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "login request failed")
}
