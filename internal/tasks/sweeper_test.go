package tasks

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	token  string
	clears int
}

func (s *fakeStore) Credential() (string, bool) { return s.token, s.token != "" }
func (s *fakeStore) ClearCredential() error     { s.token = ""; s.clears++; return nil }

func tokenExpiringAt(t *testing.T, at time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"exp": at.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestSweepClearsExpiredCredential(t *testing.T) {
	store := &fakeStore{token: tokenExpiringAt(t, time.Now().Add(-time.Hour))}

	NewCredentialSweeper(store).sweep()

	assert.Empty(t, store.token)
	assert.Equal(t, 1, store.clears)
}

func TestSweepKeepsValidCredential(t *testing.T) {
	store := &fakeStore{token: tokenExpiringAt(t, time.Now().Add(time.Hour))}

	NewCredentialSweeper(store).sweep()

	assert.NotEmpty(t, store.token)
	assert.Zero(t, store.clears)
}

func TestSweepClearsUndecodableCredential(t *testing.T) {
	store := &fakeStore{token: "garbage"}

	NewCredentialSweeper(store).sweep()

	assert.Empty(t, store.token)
}

func TestSweepIsNoopWithoutCredential(t *testing.T) {
	store := &fakeStore{}

	NewCredentialSweeper(store).sweep()

	assert.Zero(t, store.clears)
}
