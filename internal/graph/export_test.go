package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shouldi/internal/ir"
	"github.com/roach88/shouldi/internal/testutil"
)

func TestExport_Empty(t *testing.T) {
	l, err := Export(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Names())
}

// TestExport_Cardinality tests that every uniquely named descriptor yields one entry.
func TestExport_Cardinality(t *testing.T) {
	for _, n := range []int{1, 2, 5, 17} {
		ops := testutil.Chain("op", n)
		l, err := Export(ops)
		require.NoError(t, err)
		assert.Equal(t, n, l.Len())
	}
}

func TestExport_PreservesOrderAndSlots(t *testing.T) {
	ops := []ir.Operation{
		testutil.Op("scan", "json", "report"),
		testutil.Op("fetch", "package", "json"),
		testutil.Op("vulncheck", "json", "issues"),
	}

	l, err := Export(ops)
	require.NoError(t, err)
	assert.Equal(t, []string{"scan", "fetch", "vulncheck"}, l.Names())

	entry, ok := l.Get("fetch")
	require.True(t, ok)
	assert.Equal(t, []ir.Slot{{Param: "package", Definition: "package"}}, entry.Inputs)
	assert.Equal(t, []ir.Slot{{Param: "json", Definition: "json"}}, entry.Outputs)

	_, ok = l.Get("missing")
	assert.False(t, ok)
}

func TestExport_DuplicateName(t *testing.T) {
	ops := []ir.Operation{
		testutil.Op("fetch", "package", "json"),
		testutil.Op("fetch", "json", "issues"),
	}

	l, err := Export(ops)
	assert.Nil(t, l)
	require.Error(t, err)
	assert.True(t, IsDuplicateName(err))

	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "fetch", ge.Operation)
}

// TestExport_Isolated tests that later mutation of the inputs or of returned
// entries does not leak into the lookup.
func TestExport_Isolated(t *testing.T) {
	ops := []ir.Operation{testutil.Op("fetch", "package", "json")}
	l, err := Export(ops)
	require.NoError(t, err)

	ops[0].Inputs[0].Definition = "mutated"
	entry, _ := l.Get("fetch")
	entry.Outputs[0].Definition = "mutated"
	names := l.Names()
	names[0] = "mutated"

	again, _ := l.Get("fetch")
	assert.Equal(t, "package", again.Inputs[0].Definition)
	assert.Equal(t, "json", again.Outputs[0].Definition)
	assert.Equal(t, []string{"fetch"}, l.Names())
}

func TestCheckShapes(t *testing.T) {
	multi := ir.Operation{
		Name:    "safety_check",
		Inputs:  []ir.Slot{{Param: "package", Definition: "package"}, {Param: "version", Definition: "package_version"}},
		Outputs: []ir.Slot{{Param: "issues", Definition: "issues"}},
	}
	none := ir.Operation{Name: "get_single", Inputs: []ir.Slot{{Param: "query", Definition: "definitions"}}}

	tests := []struct {
		name    string
		ops     []ir.Operation
		wantErr string
	}{
		{"all single", testutil.Chain("op", 3), ""},
		{"multi input", []ir.Operation{testutil.Op("fetch", "package", "json"), multi}, "safety_check"},
		{"no output", []ir.Operation{none}, "get_single"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Export(tt.ops)
			require.NoError(t, err, "export accepts any shape")

			err = l.CheckShapes()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsUnsupportedShape(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
