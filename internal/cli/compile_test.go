package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes a command with captured output.
func runCmd(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompile_Query(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  flagged: true
`)
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, path)
	require.NoError(t, err)
	assert.Contains(t, out, "function run()")
	assert.Contains(t, out, `Application("OmniFocus")`)
	assert.Contains(t, out, "t.flagged === true")
}

func TestCompile_JSONFormat(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  flagged: true
`)
	cmd := NewCompileCommand(&RootOptions{Format: "json"})

	out, err := runCmd(cmd, path)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   CompiledScript `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "query", resp.Data.Kind)
	assert.Equal(t, len(resp.Data.Source), resp.Data.ByteLen)
	assert.Contains(t, resp.Data.Description, "flagged=true")
	assert.False(t, resp.Data.EmptyFilter)
}

func TestCompile_CountOp(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  completed: false
`)
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, "--op", "count", path)
	require.NoError(t, err)
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "t.completed === false")
}

func TestCompile_MutationOp(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  flagged: true
`)
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, "--op", "complete", path)
	require.NoError(t, err)
	assert.Contains(t, out, "t.markComplete();")
}

func TestCompile_UnknownOp(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `filter: {}`)
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	_, err := runCmd(cmd, "--op", "archive", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompile_InvalidFilter(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  tags:
    op: nearby
    tags: [work]
`)
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E101")
}

func TestCompile_OutputFile(t *testing.T) {
	path := writeDoc(t, "doc.yaml", `
filter:
  flagged: true
`)
	outFile := filepath.Join(t.TempDir(), "script.js")
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, "-o", outFile, path)
	require.NoError(t, err)
	assert.Contains(t, out, outFile)

	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), "function run()")
}

func TestCompile_MissingDocument(t *testing.T) {
	cmd := NewCompileCommand(&RootOptions{Format: "text"})

	out, err := runCmd(cmd, filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}
