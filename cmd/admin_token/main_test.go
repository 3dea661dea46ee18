package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/gazetteer/internal/auth"
)

func TestIssuesParseableToken(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--subject", "ops"})
	require.NoError(t, cmd.Execute())

	claims, err := auth.ParseToken("s3cret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "ops", claims.Subject)
}

func TestRequiresSecret(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")

	cmd := newRootCmd()
	cmd.SetArgs(nil)
	assert.ErrorContains(t, cmd.Execute(), "ADMIN_JWT_SECRET")
}
