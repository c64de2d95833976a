package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty working directory and home so that no
// csvcheck.yaml on the machine leaks into the config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "csvcheck", cmd.Use)
	assert.Contains(t, cmd.Long, "id,name,age,email,is_active")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "collect", "flags", "discover"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	markersFlag := runCmd.Flags().Lookup("markers")
	require.NotNil(t, markersFlag)
	assert.Equal(t, "m", markersFlag.Shorthand)

	rootFlag := runCmd.Flags().Lookup("root")
	require.NotNil(t, rootFlag)
	assert.Equal(t, ".", rootFlag.DefValue)

	assert.NotNil(t, runCmd.Flags().Lookup("data"))
}

func TestFlagsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	flagsCmd, _, err := cmd.Find([]string{"flags"})
	require.NoError(t, err)

	policyFlag := flagsCmd.Flags().Lookup("duplicate-ids")
	require.NotNil(t, policyFlag)
	assert.Equal(t, "last_write_wins", policyFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestExecute_InvalidFormat(t *testing.T) {
	isolate(t)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	code := Execute(context.Background(), []string{"--format", "invalid", "discover"}, stdout, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "Error [E002]")
	assert.Contains(t, stderr.String(), "oneof")
	assert.Empty(t, stdout.String())
}

func TestExecute_UsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"run", "--nope"}},
		{"too many args", []string{"run", "a.yaml", "b.yaml"}},
		{"unknown command", []string{"lint"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := &bytes.Buffer{}
			code := Execute(context.Background(), tt.args, &bytes.Buffer{}, stderr)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, stderr.String(), "Error:")
		})
	}
}

func TestExecute_ExplicitConfigMissing(t *testing.T) {
	isolate(t)
	stderr := &bytes.Buffer{}

	code := Execute(context.Background(), []string{"--config", "nope.yaml", "discover"}, &bytes.Buffer{}, stderr)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr.String(), "failed to load config")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "failed", assert.AnError)))
}
