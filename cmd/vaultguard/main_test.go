package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns its output. The package-level
// config flag makes these tests unsafe to run in parallel.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	configFile = ""
	return out.String(), err
}

func dbFlags(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"--database-url", filepath.Join(dir, "vaultguard.db"),
		"--pepper-file", filepath.Join(dir, "pepper"),
		"--log-level", "error",
	}
}

func TestRootHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"serve", "migrate", "gc", "user"})
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestMigrateCmd(t *testing.T) {
	out, err := execute(t, "", append([]string{"migrate"}, dbFlags(t)...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Schema version 2 (dirty: false)")
	require.Contains(t, out, "Migrations completed successfully")
}

func TestUserAddGenerate(t *testing.T) {
	out, err := execute(t, "", append([]string{"user", "add", "g@b.c", "--generate"}, dbFlags(t)...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Created user 1 (g@b.c)")
	require.Regexp(t, `Generated password: [A-Za-z0-9]{16}\n`, out)
}

func TestUserLifecycleCmds(t *testing.T) {
	flags := dbFlags(t)

	out, err := execute(t, "hunter2\n", append([]string{"user", "add", "a@b.c", "--password-stdin"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Created user 1 (a@b.c)")

	_, err = execute(t, "hunter2\n", append([]string{"user", "add", "a@b.c", "--password-stdin"}, flags...)...)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	require.Equal(t, "USER_EXISTS", oopsErr.Code())

	_, err = execute(t, "hunter2\n", append([]string{"user", "add", "not-an-email", "--password-stdin"}, flags...)...)
	require.Error(t, err)

	out, err = execute(t, "", append([]string{"user", "delete", "a@b.c"}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Deleted user 1")

	_, err = execute(t, "", append([]string{"user", "delete", "a@b.c"}, flags...)...)
	require.Error(t, err)
}

func TestUserAddRejectsEmptyPassword(t *testing.T) {
	_, err := execute(t, "\n", append([]string{"user", "add", "a@b.c", "--password-stdin"}, dbFlags(t)...)...)
	require.ErrorIs(t, err, errEmptySecret)
}

func TestGCCmd(t *testing.T) {
	out, err := execute(t, "", append([]string{"gc"}, dbFlags(t)...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Purged 0 expired revocation record(s)")
}

func TestServeRequiresSecret(t *testing.T) {
	_, err := execute(t, "", append([]string{"serve"}, dbFlags(t)...)...)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	require.Equal(t, "STARTUP_FAILED", oopsErr.Code())
}

func TestConfigFileFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vaultguard.yaml")
	yaml := "database_url: " + filepath.Join(dir, "from-file.db") + "\npepper_file: " + filepath.Join(dir, "pepper") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	_, err := execute(t, "", "migrate", "--config", path)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "from-file.db"))
}

func TestReadSecretFromTerminal(t *testing.T) {
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	isTerminal = func(int) bool { return true }

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(f)

	got, err := readSecret(cmd, "Password: ", false)
	require.NoError(t, err)
	require.Equal(t, "s3cret", got)
	require.Contains(t, out.String(), "Password: ")
}
