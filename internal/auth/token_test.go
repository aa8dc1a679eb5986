package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencraftmc/chatrelay/internal/model"
)

func TestMintValidateRoundTrip(t *testing.T) {
	authority, err := NewTokenAuthority([]byte("test-secret-key"), "HS256", time.Hour)
	require.NoError(t, err)

	user := model.User{Name: "steve", UUID: uuid.New(), AllowMessages: true}
	token, err := authority.Mint(user)
	require.NoError(t, err)

	got, err := authority.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	authority, err := NewTokenAuthority([]byte("test-secret-key"), "HS256", -time.Hour)
	require.NoError(t, err)

	user := model.User{Name: "steve", UUID: uuid.New(), AllowMessages: true}
	token, err := authority.Mint(user)
	require.NoError(t, err)

	_, err = authority.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	a, err := NewTokenAuthority([]byte("key-one"), "HS256", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenAuthority([]byte("key-two"), "HS256", time.Hour)
	require.NoError(t, err)

	token, err := a.Mint(model.User{Name: "steve", UUID: uuid.New()})
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.Error(t, err)
}

func TestNewTokenAuthorityRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewTokenAuthority([]byte("k"), "not-a-real-algorithm", time.Hour)
	assert.Error(t, err)
}
