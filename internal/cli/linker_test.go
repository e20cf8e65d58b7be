package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinker_BuiltinGolden(t *testing.T) {
	out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "text"}), "run_bandit", "package")
	require.NoError(t, err)
	assertGolden(t, "linker_builtin_text", []byte(out))
}

func TestLinker_BuiltinJSONGolden(t *testing.T) {
	out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "json"}), "safety_check", "package")
	require.NoError(t, err)
	assertGolden(t, "linker_builtin_json", []byte(out))
}

func TestLinker_CatalogMatchesBuiltin(t *testing.T) {
	builtin, _, err := execute(NewLinkerCommand(&RootOptions{Format: "text"}), "run_bandit", "package")
	require.NoError(t, err)

	fromCUE, _, err := execute(NewLinkerCommand(&RootOptions{Format: "text"}), "--catalog", catalogDir("shouldi"), "run_bandit", "package")
	require.NoError(t, err)
	assert.Equal(t, builtin, fromCUE)
}

func TestLinker_CycleGolden(t *testing.T) {
	out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "text"}), "--catalog", catalogDir("cycle"), "finish", "seed")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assertGolden(t, "linker_cycle_text", []byte(out))
}

func TestLinker_TieBreakFollowsOpsOrder(t *testing.T) {
	tests := []struct {
		name string
		ops  string
		want string
	}{
		{"catalog order", "", "mirror_json\nlatest_version\n"},
		{"pypi first", "pypi_json,mirror_json,latest_version", "pypi_json\nlatest_version\n"},
		{"mirror excluded", "latest_version,pypi_json", "pypi_json\nlatest_version\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--catalog", catalogDir("tiebreak")}
			if tt.ops != "" {
				args = append(args, "--ops", tt.ops)
			}
			args = append(args, "latest_version", "package")

			out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "text"}), args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestLinker_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"unknown destination", []string{"uninstall", "package"}, "PATH_NOT_FOUND", ExitFailure},
		{"no producer", []string{"safety_check", "wheel"}, "PATH_NOT_FOUND", ExitFailure},
		{"duplicate in subset", []string{"--ops", "safety_check,safety_check", "safety_check", "package_version"}, "DUPLICATE_OPERATION_NAME", ExitFailure},
		{"unknown op in subset", []string{"--ops", "safety_check,nope", "safety_check", "package_version"}, ErrCodeNotFound, ExitCommandError},
		{"unsupported shape", []string{"--catalog", catalogDir("multi"), "fetch", "package"}, "UNSUPPORTED_SHAPE", ExitFailure},
		{"missing catalog", []string{"--catalog", "testdata/catalogs/none", "fetch", "package"}, ErrCodeNotFound, ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "json"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestLinker_PartialPathInDetails(t *testing.T) {
	out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "json"}), "run_bandit", "wheel")
	require.Error(t, err)

	var resp struct {
		Error struct {
			Code    string            `json:"code"`
			Details graphErrorDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "PATH_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "package", resp.Error.Details.Definition)
	assert.Equal(t, []string{"run_bandit", "pypi_package_contents", "pypi_package_url", "pypi_package_json"}, resp.Error.Details.Partial)
}

func TestLinker_SourceIsDestinationInput(t *testing.T) {
	out, _, err := execute(NewLinkerCommand(&RootOptions{Format: "text"}), "safety_check", "package_version")
	require.NoError(t, err)
	assert.Equal(t, "safety_check\n", out)
}
