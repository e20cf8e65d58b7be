package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperationSingle(t *testing.T) {
	op := NewOperation("fetch", Slot{"package", "package"}, Slot{"response_json", "package_json"})

	assert.True(t, op.Single())
	assert.Equal(t, "package", op.Input().Definition)
	assert.Equal(t, "package_json", op.Output().Definition)
	assert.Equal(t, "response_json:package_json", op.Output().String())
}

func TestOperationMultiSlotPanics(t *testing.T) {
	op := Operation{
		Name:    "safety_check",
		Inputs:  []Slot{{"package", "package"}, {"version", "package_version"}},
		Outputs: []Slot{{"issues", "vulnerability_issue_count"}},
	}

	assert.False(t, op.Single())
	assert.Panics(t, func() { op.Input() })
	assert.NotPanics(t, func() { op.Output() })
}

func TestOperationClone(t *testing.T) {
	op := NewOperation("fetch", Slot{"package", "package"}, Slot{"out", "json"})
	clone := op.Clone()
	clone.Inputs[0].Definition = "mutated"

	assert.Equal(t, "package", op.Input().Definition, "clone must not share slot storage")
}

func TestOperationJSONFieldNaming(t *testing.T) {
	op := NewOperation("fetch", Slot{"package", "package"}, Slot{"out", "json"})
	data, err := json.Marshal(op)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"name":"fetch","inputs":[{"param":"package","definition":"package"}],"outputs":[{"param":"out","definition":"json"}]}`,
		string(data))
}
