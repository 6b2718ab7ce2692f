package commands

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contract-ledger/internal/auth"
	"github.com/spec-kit/contract-ledger/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	tokens := auth.NewTokenManager("cli-secret", 5)

	out, err := run(t, "token", "--profile", "4")
	require.NoError(t, err)
	claims, err := tokens.ParseToken(out)
	require.NoError(t, err)
	assert.Equal(t, int64(4), claims.ProfileID)
	assert.Equal(t, domain.RoleProfile, claims.Role)

	out, err = run(t, "token", "--admin")
	require.NoError(t, err)
	claims, err = tokens.ParseToken(out)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = run(t, "token")
	assert.Error(t, err)
	_, err = run(t, "token", "--admin", "--profile", "1")
	assert.Error(t, err)
}

func TestMigrateList(t *testing.T) {
	out, err := run(t, "migrate", "--list")
	require.NoError(t, err)
	assert.Equal(t, "migrations/0001_init.sql", out)

	out, err = run(t, "migrate", "--list", "--seed")
	require.NoError(t, err)
	assert.Equal(t, "migrations/0001_init.sql\nseeds/demo.sql", out)
}

func TestMigrateRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	_, err := run(t, "migrate")
	assert.Error(t, err)
}
