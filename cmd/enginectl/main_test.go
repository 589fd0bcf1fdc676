package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

// run executes enginectl with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	stressCount, stressWorkers, stressBudget = 1000, 1, 0

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "enginectl 0.3.0")
	assert.Contains(t, out, "abi: v1.0.0")
	assert.Contains(t, out, "32 slots")
}

func TestTypesCommand(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Object size=")
	assert.Contains(t, out, "  Window size=")

	out, err = run(t, "types", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"abi"`)
	assert.Contains(t, out, `"Window"`)
}

func TestManifestCheck(t *testing.T) {
	exported, err := run(t, "types", "--json")
	require.NoError(t, err)

	tests := []struct {
		name        string
		manifest    string
		wantErr     string
		wantContain string
	}{
		{
			name:        "own export",
			manifest:    exported,
			wantContain: "2 types, 0 new",
		},
		{
			name: "new type",
			manifest: `{"abi":"v1.0.0","types":[
				{"name":"Object","size":` + rootSize(t, exported) + `},
				{"name":"Plugin","size":8,"parent":"Object"}]}`,
			wantContain: "2 types, 1 new",
		},
		{
			name:     "newer major",
			manifest: `{"abi":"v2.0.0","types":[]}`,
			wantErr:  "incompatible",
		},
		{
			name:     "identity mismatch",
			manifest: `{"abi":"v1.0.0","types":[{"name":"Object","size":1}]}`,
			wantErr:  "mismatch",
		},
		{
			name:     "not json",
			manifest: `types: [Object]`,
			wantErr:  "decode manifest",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "m.json", tt.manifest)
			out, err := run(t, "manifest", "check", path)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantContain)
		})
	}
}

func TestManifestCheck_MissingFile(t *testing.T) {
	_, err := run(t, "manifest", "check", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestStressCommand(t *testing.T) {
	out, err := run(t, "stress", "--count", "65")
	require.NoError(t, err)
	assert.Contains(t, out, "allocated 65 objects")
	assert.Contains(t, out, "table: 32 pooled, 33 heap")
	assert.Contains(t, out, "leaks: 0")

	out, err = run(t, "stress", "-n", "50", "-w", "4", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "allocated 200 objects")
	assert.Contains(t, out, "created 200, destroyed 200")
}

func TestStressCommand_Budget(t *testing.T) {
	_, err := run(t, "stress", "--count", "10", "--budget", "64")
	assert.ErrorContains(t, err, "budget")
}

func TestRunStress_BadArgs(t *testing.T) {
	_, err := runStress(10, 0, 0)
	assert.Error(t, err)
}

func rootSize(t *testing.T, manifest string) string {
	t.Helper()
	m, err := typeinfo.UnmarshalManifest([]byte(manifest))
	require.NoError(t, err)
	require.NotEmpty(t, m.Types)
	return strconv.FormatUint(uint64(m.Types[0].Size), 10)
}

func TestModuleCommand(t *testing.T) {
	dir := t.TempDir()
	writeGoModAt(t, dir, "module example.com/game\n\nrequire github.com/kolkov/enginecore v0.3.0\n")
	nested := filepath.Join(dir, "levels")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	out, err := run(t, "module", nested)
	require.NoError(t, err)
	assert.Contains(t, out, "example.com/game requires github.com/kolkov/enginecore v0.3.0")

	other := t.TempDir()
	writeGoModAt(t, other, "module example.com/old\n\nrequire github.com/kolkov/enginecore v0.1.0\n")
	_, err = run(t, "module", other)
	assert.ErrorContains(t, err, "minor")
}

func writeGoModAt(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0o644))
}
