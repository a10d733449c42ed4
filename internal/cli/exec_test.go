package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/testutil"
)

const flaggedYAML = `
filter:
  flagged: true
`

func TestQueryCommand_Success(t *testing.T) {
	path := writeDoc(t, "doc.yaml", flaggedYAML)
	spawner := testutil.NewFakeSpawner(
		testutil.NewFakeProcess(testutil.Envelope(`[{"id":"t1","name":"Ship"}]`)),
	)
	cmd := NewQueryCommand(&RootOptions{Format: "json", Spawner: spawner})

	out, err := runCmd(cmd, path)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.JSONEq(t, `[{"id":"t1","name":"Ship"}]`, string(resp.Data))
	assert.Equal(t, 1, spawner.SpawnCount())
}

func TestQueryCommand_TextPrettyPrints(t *testing.T) {
	path := writeDoc(t, "doc.yaml", flaggedYAML)
	spawner := testutil.NewFakeSpawner(
		testutil.NewFakeProcess(testutil.Envelope(`[{"id":"t1"}]`)),
	)
	cmd := NewQueryCommand(&RootOptions{Format: "text", Spawner: spawner})

	out, err := runCmd(cmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "t1"`)
}

func TestQueryCommand_ScriptReportedError(t *testing.T) {
	path := writeDoc(t, "doc.yaml", flaggedYAML)
	spawner := testutil.NewFakeSpawner(
		testutil.NewFakeProcess(testutil.ErrorEnvelope("automation denied", "evaluateJavascript")),
	)
	cmd := NewQueryCommand(&RootOptions{Format: "text", Spawner: spawner})

	out, err := runCmd(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "SCRIPT_REPORTED")
	assert.Contains(t, out, "automation denied")
}

func TestQueryCommand_InvalidFilterIsCommandError(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  name:
    value: ""
`)
	spawner := testutil.NewFakeSpawner()
	cmd := NewQueryCommand(&RootOptions{Format: "text", Spawner: spawner})

	_, err := runCmd(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, 0, spawner.SpawnCount())
}

func TestCountCommand_Success(t *testing.T) {
	path := writeDoc(t, "doc.yaml", flaggedYAML)
	spawner := testutil.NewFakeSpawner(
		testutil.NewFakeProcess(testutil.Envelope(`{"count":12}`)),
	)
	cmd := NewCountCommand(&RootOptions{Format: "json", Spawner: spawner})

	out, err := runCmd(cmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, `"count":12`)
}

func TestMutationCommand_Complete(t *testing.T) {
	path := writeDoc(t, "doc.yaml", flaggedYAML)
	spawner := testutil.NewFakeSpawner(
		testutil.NewFakeProcess(testutil.Envelope(`{"mutated":3}`)),
	)
	opts := &RootOptions{Format: "json", Spawner: spawner}

	var complete *cobra.Command
	for _, cmd := range NewMutationCommands(opts) {
		if cmd.Name() == "complete" {
			complete = cmd
		}
	}
	require.NotNil(t, complete)

	out, err := runCmd(complete, path)
	require.NoError(t, err)
	assert.Contains(t, out, `"mutated":3`)
}

func TestMutationCommand_RefusesEmptyFilter(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `filter: {}`)
	spawner := testutil.NewFakeSpawner()
	opts := &RootOptions{Format: "text", Spawner: spawner}

	for _, cmd := range NewMutationCommands(opts) {
		out, err := runCmd(cmd, path)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "empty filter")
	}
	assert.Equal(t, 0, spawner.SpawnCount())
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writeDoc(t, "doc.yaml", flaggedYAML)
	cmd := NewValidateCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "flagged=true")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  dueDate:
    after: "2026-03-01T00:00:00Z"
    before: "2026-02-01T00:00:00Z"
`)
	cmd := NewValidateCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "dueDate")
}

func TestRootCommand_RejectsBadFormat(t *testing.T) {
	cmd := NewRootCommand()
	_, err := runCmd(cmd, "--format", "xml", "validate", filepath.Join(t.TempDir(), "x.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_HasAllCommands(t *testing.T) {
	cmd := NewRootCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"compile", "validate", "query", "count", "complete", "flag", "unflag", "drop"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
