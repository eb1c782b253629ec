package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/dvynshuu/fintrack/internal/auth"
	"github.com/dvynshuu/fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_success.db")

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"add", "--email", "test@example.com", "--name", "Tess", "--password", "secret", "--db", dbPath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "User test@example.com created successfully")

	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	user, err := db.GetUserByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Tess", user.Name)
	assert.True(t, auth.CheckPassword("secret", user.PasswordHash))
}

func TestRun_DefaultName(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_name.db")

	args := []string{"add", "--email", "jo@example.com", "--password", "secret", "--db", dbPath}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	db, err := storage.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	user, err := db.GetUserByEmail(context.Background(), "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jo", user.Name)
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_duplicate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"add", "--email", "test@example.com", "--password", "secret", "--db", dbPath}

	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err, "first run should succeed")

	stdout.Reset()
	stderr.Reset()
	err = run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingEmailFlag(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := new(bytes.Buffer)

	args := []string{"add", "--password", "secret"}
	err := run(args, stdin, stdout, stderr)
	require.Error(t, err, "expected error for missing email flag")
	assert.Contains(t, err.Error(), `required flag(s) "email" not set`)
	assert.Contains(t, stdout.String()+stderr.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_interactive.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	// Simulate typing the password followed by newline.
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"add", "--email", "interactive@example.com", "--db", dbPath}
	err := run(args, stdin, stdout, stderr)
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "Password: ")
	assert.Contains(t, output, "User interactive@example.com created successfully")
}

func TestRun_InteractivePassword_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_empty.db")
	stdin := bytes.NewBufferString("\n")

	args := []string{"add", "--email", "empty@example.com", "--db", dbPath}
	err := run(args, stdin, new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error for empty password")
	assert.Contains(t, err.Error(), "password cannot be empty")
	assert.NoFileExists(t, dbPath, "database is not touched before input is valid")
}

func TestRun_EnvVarOverride(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_env.db")
	t.Setenv("DB_PATH", dbPath)

	args := []string{"add", "--email", "env@example.com", "--password", "secret"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.NoError(t, err)

	assert.FileExists(t, dbPath)
}

func TestRun_FlagBeatsEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.db")
	flagPath := filepath.Join(dir, "flag.db")
	t.Setenv("DB_PATH", envPath)

	args := []string{"add", "--email", "flag@example.com", "--password", "secret", "--db", flagPath}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	assert.FileExists(t, flagPath)
	assert.NoFileExists(t, envPath)
}

func TestRun_InvalidDBPath(t *testing.T) {
	// A directory is not a usable database file.
	tmpDir := t.TempDir()

	args := []string{"add", "--email", "fail@example.com", "--password", "secret", "--db", tmpDir}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error for invalid db path")
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestRun_InvalidFlag(t *testing.T) {
	args := []string{"add", "--invalid"}
	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error for invalid flag")
	assert.Contains(t, err.Error(), "unknown flag: --invalid")
}

func TestRun_Delete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_delete.db")

	add := []string{"add", "--email", "gone@example.com", "--password", "secret", "--db", dbPath}
	require.NoError(t, run(add, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	stdout := new(bytes.Buffer)
	del := []string{"delete", "--email", "gone@example.com", "--db", dbPath}
	require.NoError(t, run(del, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "User gone@example.com deleted")

	err := run(del, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
