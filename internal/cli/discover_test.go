package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/csvcheck/internal/testutil"
)

func TestDiscoverCommand(t *testing.T) {
	dir := isolate(t)
	want := testutil.WriteFile(t, dir, filepath.Join("a", "data.csv"), "")
	testutil.WriteFile(t, dir, filepath.Join("b", "data.csv"), "")

	buf := &bytes.Buffer{}
	cmd := NewDiscoverCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, want+"\n", buf.String())
}

func TestDiscoverCommand_JSONAndName(t *testing.T) {
	dir := isolate(t)
	want := testutil.WriteFile(t, dir, filepath.Join("exports", "roster.csv"), "")

	buf := &bytes.Buffer{}
	cmd := NewDiscoverCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--name", "roster.csv"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string         `json:"status"`
		Data   DiscoverResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, DiscoverResult{Root: dir, Path: want}, resp.Data)
}

func TestDiscoverCommand_NotFound(t *testing.T) {
	dir := isolate(t)

	errBuf := &bytes.Buffer{}
	cmd := NewDiscoverCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errBuf.String(), "Error [E005]: data file not found")
}
