package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsLoginAndVerify(t *testing.T) {
	s, err := NewSessions("admin", "hunter2", "secret")
	require.NoError(t, err)

	_, err = s.Login("admin", "wrong")
	assert.True(t, errors.Is(err, ErrBadCredentials))
	_, err = s.Login("root", "hunter2")
	assert.True(t, errors.Is(err, ErrBadCredentials))

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	user, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)

	other, err := NewSessions("admin", "hunter2", "different")
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.Error(t, err, "tokens signed with another secret are rejected")
}

func TestSessionsExpire(t *testing.T) {
	s, err := NewSessions("admin", "hunter2", "secret")
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	now = now.Add(sessionTTL + time.Minute)
	_, err = s.Verify(token)
	assert.Error(t, err)
}

func TestSessionsEmptyPasswordDisablesLogin(t *testing.T) {
	s, err := NewSessions("admin", "", "")
	require.NoError(t, err)

	_, err = s.Login("admin", "")
	assert.True(t, errors.Is(err, ErrBadCredentials))
}
