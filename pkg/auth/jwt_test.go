package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", "accounts-test", time.Hour)

	token, expiresAt, err := issuer.Issue("acc-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.ID)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, "accounts-test", claims.Issuer)
}

func TestParse_WrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("secret-a", "x", time.Hour).Issue("acc-1")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", "x", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "x", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue("acc-1")
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.Error(t, err)
}

func TestIssue_EmptyAccount(t *testing.T) {
	_, _, err := NewTokenIssuer("secret", "x", time.Minute).Issue("")
	assert.Error(t, err)
}
