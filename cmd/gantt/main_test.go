package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDocument = `{
	"name": "Old plan",
	"tasks": [
		{"id": "0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a01", "name": "Dig", "start": "2023-05-01",
		 "end": "2023-05-04", "progress": 0.5, "color": [70,130,180,255], "is_milestone": false}
	],
	"dependencies": [],
	"created": "2023-04-30T10:00:00",
	"modified": "2023-04-30T11:00:00"
}`

// run executes the CLI against dbPath and returns its stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ImportShowExport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "gantt.db")
	docPath := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(docPath, []byte(legacyDocument), 0o644))

	out, err := run(t, dbPath, "import", docPath)
	require.NoError(t, err)
	m := regexp.MustCompile(`as (\S+) \(1 tasks\)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	projectID := m[1]

	out, err = run(t, dbPath, "add-task", projectID, "--name", "Ship", "--start", "2023-05-10", "--milestone")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Ship"`)

	out, err = run(t, dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Old plan")
	assert.Regexp(t, `Old plan\s+2\s+1\s+0`, out)

	out, err = run(t, dbPath, "show", projectID)
	require.NoError(t, err)
	assert.Contains(t, out, "Old plan: 2023-04-24T00:00:00")
	assert.Contains(t, out, "Days scale")
	assert.Contains(t, out, "Dig")
	assert.Contains(t, out, "Ship ◆")
	assert.Contains(t, out, "50%")

	out, err = run(t, dbPath, "show", projectID, "--query", "ship")
	require.NoError(t, err)
	assert.NotContains(t, out, "Dig")

	exportPath := filepath.Join(dir, "plan.yaml")
	_, err = run(t, dbPath, "export", projectID, "-o", exportPath)
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 3")
	assert.Contains(t, string(data), "name: Ship")

	out, err = run(t, dbPath, "activity", projectID)
	require.NoError(t, err)
	assert.Contains(t, out, "task_added")
	assert.Contains(t, out, "project_imported")
}

func TestCLI_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gantt.db")

	_, err := run(t, dbPath, "show", "missing")
	require.Error(t, err)

	_, err = run(t, dbPath, "import", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	_, err = run(t, dbPath, "add-task", "missing", "--name", "X", "--start", "yesterday")
	require.Error(t, err)
}

func TestCLI_APIKeyCreate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "gantt.db")

	out, err := run(t, dbPath, "--tenant", "acme", "apikey", "create", "--token", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "tenant acme: s3cret")

	_, err = run(t, dbPath, "--tenant", "acme", "apikey", "create", "--token", "s3cret")
	require.Error(t, err)
}
