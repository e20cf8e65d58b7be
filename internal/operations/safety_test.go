package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedRunner returns fixed output and records the call.
type cannedRunner struct {
	out   []byte
	err   error
	stdin []byte
	name  string
	args  []string
}

func (r *cannedRunner) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	r.stdin, r.name, r.args = stdin, name, args
	return r.out, r.err
}

func TestSafetyChecker_Check(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want int64
	}{
		{"legacy list", `[["insecure-package","<0.2.0","0.1.0","desc","25853"],["x","<1","0.5","d","1"]]`, 2},
		{"empty list", `[]`, 0},
		{"report object", `{"report_meta": {}, "vulnerabilities": [{"id": "1"}, {"id": "2"}, {"id": "3"}]}`, 3},
		{"report object clean", `{"vulnerabilities": []}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &cannedRunner{out: []byte(tt.out)}
			s := NewSafetyChecker("", r)

			got, err := s.Check(context.Background(), "insecure-package==0.1.0")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.Equal(t, DefaultSafetyBin, r.name)
			assert.Equal(t, []string{"check", "--stdin", "--json"}, r.args)
			assert.Equal(t, "insecure-package==0.1.0\n", string(r.stdin))
		})
	}
}

func TestSafetyChecker_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *cannedRunner
		wantErr string
	}{
		{"runner error", &cannedRunner{err: &ToolError{Tool: "safety", Err: errors.New("exit 64")}}, "safety failed"},
		{"empty output", &cannedRunner{out: []byte("  \n")}, "no output"},
		{"garbage", &cannedRunner{out: []byte("Traceback")}, "decode report"},
		{"object without list", &cannedRunner{out: []byte(`{"report_meta": {}}`)}, "no vulnerabilities field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSafetyChecker("safety", tt.runner).Check(context.Background(), "x==1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
