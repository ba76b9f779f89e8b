package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ms-registration/internal/auth"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("user@example.com")
	require.NoError(t, err)

	email, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user@example.com", email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	other := auth.NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue("user@example.com")
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("user@example.com")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("")
	require.Error(t, err)

	_, err = issuer.Verify("not-a-token")
	require.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/events", nil)
	_, err := auth.ExtractTokenFromRequest(r)
	require.Error(t, err)

	r.Header.Set("Authorization", "Basic abc")
	_, err = auth.ExtractTokenFromRequest(r)
	require.Error(t, err)

	r.Header.Set("Authorization", "Bearer sometoken")
	token, err := auth.ExtractTokenFromRequest(r)
	require.NoError(t, err)
	require.Equal(t, "sometoken", token)
}
