package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/gazetteer/internal/constants"
)

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken("s3cret", "ops", constants.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "ops", claims.Subject)
}

func TestParseTokenRejectsWrongSecretAndExpired(t *testing.T) {
	token, err := IssueToken("s3cret", "ops", constants.RoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueToken("s3cret", "ops", constants.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
