package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/akasa-feast/internal/domain/user"
)

type mockUserRepo struct {
	byEmail map[string]*user.User
	nextID  int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*user.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, email, passwordHash string) (*user.User, error) {
	if _, ok := m.byEmail[email]; ok {
		return nil, user.ErrEmailTaken
	}
	u := &user.User{ID: m.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.nextID++
	m.byEmail[email] = u
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func newAuthenticator(t *testing.T) (*Authenticator, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	return New(repo, []byte("test-secret"), time.Hour), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a, _ := newAuthenticator(t)

	u, err := a.Register(context.Background(), "Diner@Example.COM", "hungry123")
	require.NoError(t, err)
	assert.Equal(t, "diner@example.com", u.Email)
	assert.NotEqual(t, "hungry123", u.PasswordHash)

	got, err := a.Authenticate(context.Background(), "diner@example.com", "hungry123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = a.Authenticate(context.Background(), "diner@example.com", "wrongpass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(context.Background(), "nobody@example.com", "hungry123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	a, _ := newAuthenticator(t)

	_, err := a.Register(context.Background(), "diner@example.com", "hungry123")
	require.NoError(t, err)

	_, err = a.Register(context.Background(), "diner@example.com", "hungry123")
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestRegister_InvalidEmail(t *testing.T) {
	a, _ := newAuthenticator(t)

	for _, email := range []string{"", "nodomain", "@example.com", "x@", "x@nodot"} {
		_, err := a.Register(context.Background(), email, "hungry123")
		require.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("hungry123"))

	tests := []struct {
		name     string
		password string
		reason   string
	}{
		{"too short", "ab1", "at least 8"},
		{"no digit", "hungryhippo", "digit"},
		{"no letter", "12345678", "letter"},
		{"too long", string(make([]byte, 80)), "at most 72"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			var policy *PasswordPolicyError
			require.ErrorAs(t, err, &policy)
			assert.Contains(t, policy.Reason, tt.reason)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a, _ := newAuthenticator(t)

	token, expires, err := a.IssueToken(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	id, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestVerifyToken_Expired(t *testing.T) {
	a, _ := newAuthenticator(t)

	token, _, err := a.IssueToken(42)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	a, _ := newAuthenticator(t)
	token, _, err := a.IssueToken(42)
	require.NoError(t, err)

	other := New(newMockUserRepo(), []byte("other-secret"), time.Hour)
	_, err = other.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
