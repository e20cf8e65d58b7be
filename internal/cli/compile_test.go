package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileTieBreakGolden(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), catalogDir("tiebreak"))
	require.NoError(t, err)
	assertGolden(t, "compile_tiebreak_json", []byte(out))
}

func TestCompileText(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), catalogDir("tiebreak"))
	require.NoError(t, err)
	assert.Equal(t, "✓ Compiled 3 operation(s)\n\n"+
		"mirror_json: package → package_json\n"+
		"pypi_json: package → package_json\n"+
		"latest_version: package_json → package_version\n", out)
}

func TestCompileOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), "-o", path, catalogDir("shouldi"))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote catalog to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Order, 6)
	require.Contains(t, result.Operations, "safety_check")
	assert.Equal(t, "package_version", result.Operations["safety_check"].Inputs[0].Definition)
	assert.Equal(t, "vulnerability_issue_count", result.Operations["safety_check"].Outputs[0].Definition)
}

func TestCompileKeepsMultiSlotOperations(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), catalogDir("multi"))
	require.NoError(t, err)
	assert.Contains(t, out, "safety_check: (package, package_version) → vulnerability_issue_count")
}

func TestCompileMalformed(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), catalogDir("malformed"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "line 4")
	assert.Contains(t, out, ErrCodeInvalidInputs)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), "/nonexistent/catalog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestCompileVerboseOutput(t *testing.T) {
	_, errOut, err := execute(NewCompileCommand(&RootOptions{Format: "text", Verbose: true}), catalogDir("tiebreak"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "Found 1 CUE file(s)")
	assert.Contains(t, errOut, "Compiling operation: pypi_json")
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles(catalogDir("shouldi"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"inputs", ErrCodeInvalidInputs},
		{"inputs.package", ErrCodeInvalidInputs},
		{"outputs", ErrCodeInvalidOutputs},
		{"outputs.report", ErrCodeInvalidOutputs},
		{"cue", ErrCodeGeneric},
		{"inputsx", ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}
