package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smart-chat-go/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: \"s3cret\"\n  access_token_expire_hours: 2\n")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--config", path, "--user", "alice"})
	require.NoError(t, cmd.Execute())

	claims, err := token.NewJWTManager("s3cret", 2).VerifyToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "jwt:\n  secret: \"\"\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--config", path, "--user", "alice"})
	assert.Error(t, cmd.Execute())
}

func TestTokenCommand_RequiresUser(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: \"x\"\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--config", path})
	assert.Error(t, cmd.Execute())
}
