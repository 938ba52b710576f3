package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-for-sessions")

func newProvider(t *testing.T) (*JWTProvider, *FileTokenStore) {
	t.Helper()
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "ponder", "session"))
	provider, err := NewJWTProvider(store, testSecret)
	require.NoError(t, err)
	return provider, store
}

func TestIssueAndParse(t *testing.T) {
	token, err := Issue(testSecret, "user-1", "ada@example.com", time.Hour)
	require.NoError(t, err)

	s, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, "ada@example.com", s.Email)
	assert.Equal(t, token, s.AccessToken)
	assert.True(t, s.Authenticated())
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)
}

func TestParse_Rejects(t *testing.T) {
	valid, err := Issue(testSecret, "user-1", "", time.Hour)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	expiredToken, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	noExpiryToken, err := noExpiry.SignedString(testSecret)
	require.NoError(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	noSubjectToken, err := noSubject.SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret []byte
		token  string
	}{
		{name: "wrong secret", secret: []byte("other"), token: valid},
		{name: "expired", secret: testSecret, token: expiredToken},
		{name: "missing exp", secret: testSecret, token: noExpiryToken},
		{name: "missing subject", secret: testSecret, token: noSubjectToken},
		{name: "garbage", secret: testSecret, token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.secret, tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrAuth)
		})
	}
}

func TestIssue_Validation(t *testing.T) {
	_, err := Issue(nil, "user-1", "", time.Hour)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = Issue(testSecret, " ", "", time.Hour)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestJWTProvider_LoginCurrentLogout(t *testing.T) {
	provider, store := newProvider(t)
	ctx := context.Background()

	_, err := provider.Current(ctx)
	require.ErrorIs(t, err, common.ErrAuth)

	token, err := Issue(testSecret, "user-42", "bob@example.com", time.Hour)
	require.NoError(t, err)

	s, err := provider.Login("  " + token + "\n")
	require.NoError(t, err)
	assert.Equal(t, "user-42", s.UserID)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	current, err := provider.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-42", current.UserID)
	assert.Equal(t, "bob@example.com", current.Email)

	require.NoError(t, provider.Logout())
	require.NoError(t, provider.Logout())
	_, err = provider.Current(ctx)
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestJWTProvider_LoginRejectsInvalidToken(t *testing.T) {
	provider, store := newProvider(t)

	_, err := provider.Login("bogus")
	require.ErrorIs(t, err, common.ErrAuth)

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestNewJWTProvider_RequiresSecret(t *testing.T) {
	_, err := NewJWTProvider(NewFileTokenStore(filepath.Join(t.TempDir(), "s")), nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestStatic(t *testing.T) {
	s, err := NewStatic("user-1", "").Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)

	_, err = NewStatic("", "").Current(context.Background())
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestFileTokenStore_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store := NewFileTokenStore("")
	assert.Equal(t, filepath.Join(home, ".config", "ponder", "session"), store.Path())
}
