package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, adminEmails ...string) (*Service, *InMemoryUserRepository, *InMemoryTokenStore) {
	t.Helper()
	users := NewInMemoryUserRepository()
	tokens := NewInMemoryTokenStore()
	svc := NewService(users, tokens, NewWhitelist(adminEmails...), nil)
	return svc, users, tokens
}

func TestSignupAssignsRoleFromWhitelist(t *testing.T) {
	svc, _, _ := newTestService(t, "chief@city.org")
	ctx := context.Background()

	admin, err := svc.Signup(ctx, &SignupRequest{Email: "Chief@City.org", Password: "secret1", Name: "Chief"})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.Equal(t, "chief@city.org", admin.Email)

	user, err := svc.Signup(ctx, &SignupRequest{Email: "citizen@example.com", Password: "secret1", Name: "Cit"})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "a@x.org", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, &SignupRequest{Email: "A@X.ORG", Password: "secret1", Name: "A"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "", Password: "secret1", Name: "A"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Signup(ctx, &SignupRequest{Email: "a@x.org", Password: "short", Name: "A"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "a@x.org", Password: "secret1", Name: "Ada"})
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, &LoginRequest{Email: "a@x.org", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ada", user.Name)

	session, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, RoleUser, session.Role)

	stored, err := users.GetByEmail(ctx, "a@x.org")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoggedIn)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "a@x.org", Password: "secret1", Name: "Ada"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, &LoginRequest{Email: "a@x.org", Password: "wrong-1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts look the same as wrong passwords.
	_, _, err = svc.Login(ctx, &LoginRequest{Email: "ghost@x.org", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &SignupRequest{Email: "a@x.org", Password: "secret1", Name: "Ada"})
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, &LoginRequest{Email: "a@x.org", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
