package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `name: release
steps:
  - name: build
    parallel: true
    steps:
      - name: compile
        units: 3
      - name: assets
        units: 2
  - name: publish
    units: 1
`

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	err = Run(context.Background(), append([]string{"progtree"}, args...), nil, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), err
}

func TestCLIRunLifecycle(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "progtree.db")
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0644))

	// Execute the plan.
	stdout, stderr, err := runCLI(t, "--no-log", "--db-path", dbPath, "run", planPath, "--no-bars", "--period", "10ms", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "compile: complete 100%")
	assert.Contains(t, stderr, "Overall: 100%")

	var run struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Overall float64 `json:"overall"`
		Actions []struct {
			Text   string `json:"text"`
			Status string `json:"status"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &run))
	assert.Equal(t, "release", run.Name)
	assert.Equal(t, 1.0, run.Overall)
	require.Len(t, run.Actions, 4)
	for _, a := range run.Actions {
		assert.Equal(t, "complete", a.Status, a.Text)
	}

	// The run is stored.
	stdout, _, err = runCLI(t, "--db-path", dbPath, "list", "--format", "json")
	require.NoError(t, err)
	var runs []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	stdout, _, err = runCLI(t, "--db-path", dbPath, "show", run.ID[:20])
	require.NoError(t, err)
	assert.Contains(t, stdout, "Name:       release")
	assert.Contains(t, stdout, "  compile")

	// Remove it.
	stdout, _, err = runCLI(t, "--no-log", "--db-path", dbPath, "rm", run.ID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed run "+run.ID)

	_, _, err = runCLI(t, "--no-log", "--db-path", dbPath, "rm", run.ID)
	assert.Error(t, err)

	stdout, _, err = runCLI(t, "--db-path", dbPath, "list")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestCLIDoctor(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "progtree.db")
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0644))

	stdout, _, err := runCLI(t, "--db-path", dbPath, "doctor", "--plan", planPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "OK data_dir")
	assert.Contains(t, stdout, "OK database")
	assert.Contains(t, stdout, `plan "release" is valid (4 steps)`)
	assert.Contains(t, stdout, "!! terminal")

	stdout, _, err = runCLI(t, "--db-path", dbPath, "doctor", "--plan", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, stdout, "XX plan")
}

func TestCLIRunInvalidPlan(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte("name: empty\n"), 0644))

	_, _, err := runCLI(t, "--no-log", "--db-path", filepath.Join(dir, "progtree.db"), "run", planPath)
	assert.Error(t, err)
}

func TestCLIRunNoSave(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "progtree.db")
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0644))

	stdout, _, err := runCLI(t, "--no-log", "--db-path", dbPath, "run", planPath, "--no-bars", "--no-save", "--period", "10ms")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Name:       release")

	stdout, _, err = runCLI(t, "--no-log", "--db-path", dbPath, "list", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", stdout)
}
