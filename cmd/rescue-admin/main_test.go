package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"animal-rescue/internal/adapters/auth/password"
	"animal-rescue/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_FromArg(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-password", "--cost", "4", "DHINESH"})

	require.NoError(t, cmd.Execute())
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, password.Check(hash, "DHINESH"))
	assert.ErrorIs(t, password.Check(hash, "other"), password.ErrMismatch)
}

func TestHashPassword_FromStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetArgs([]string{"hash-password", "--cost", "4"})

	require.NoError(t, cmd.Execute())
	assert.NoError(t, password.Check(strings.TrimSpace(out.String()), "s3cret"))
}

func TestHashPassword_Empty(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"hash-password", "--cost", "4"})

	assert.Error(t, cmd.Execute())
}

func TestRunMigrate(t *testing.T) {
	var out bytes.Buffer

	cfg := config.Defaults()
	require.NoError(t, runMigrate(context.Background(), &out, cfg))
	assert.Contains(t, out.String(), "nothing to migrate")

	out.Reset()
	cfg.DBDriver = config.DriverSQLite
	cfg.DBDSN = filepath.Join(t.TempDir(), "rescue.db")
	require.NoError(t, runMigrate(context.Background(), &out, cfg))
	require.NoError(t, runMigrate(context.Background(), &out, cfg))
	assert.Contains(t, out.String(), "sqlite: migrations applied")
}
