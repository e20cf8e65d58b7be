package dataflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shouldi/internal/graph"
	"github.com/roach88/shouldi/internal/ir"
	"github.com/roach88/shouldi/internal/observability"
	"github.com/roach88/shouldi/internal/testutil"
)

func impl(name, in, out string, fn Func) Implementation {
	return Implementation{Op: testutil.Op(name, in, out), Run: fn}
}

func suffix(s string) Func {
	return func(_ context.Context, in any) (any, error) {
		return fmt.Sprintf("%v%s", in, s), nil
	}
}

func seed(key string) Context {
	return Context{Key: key, Seeds: []Input{{Definition: "package", Value: key}}}
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := New([]Implementation{
		impl("a", "package", "x", suffix("")),
		impl("a", "x", "y", suffix("")),
	}, Options{})
	require.Error(t, err)
	assert.True(t, graph.IsDuplicateName(err))
}

func TestNew_RejectsUnsupportedShape(t *testing.T) {
	op := ir.Operation{Name: "two", Inputs: []ir.Slot{{Param: "a", Definition: "a"}, {Param: "b", Definition: "b"}}, Outputs: []ir.Slot{{Param: "c", Definition: "c"}}}
	_, err := New([]Implementation{{Op: op, Run: suffix("")}}, Options{})
	require.Error(t, err)
	assert.True(t, graph.IsUnsupportedShape(err))
}

func TestNew_RejectsMissingFunc(t *testing.T) {
	_, err := New([]Implementation{{Op: testutil.Op("a", "package", "x")}}, Options{})
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeMissingImplementation, re.Code)
	assert.Equal(t, "a", re.Operation)
}

func TestRun_FanOutAndFanIn(t *testing.T) {
	// package -> json -> {version, url}; version -> vulns; url -> report
	o, err := New([]Implementation{
		impl("fetch", "package", "json", suffix("/json")),
		impl("version", "json", "version", suffix("/version")),
		impl("url", "json", "url", suffix("/url")),
		impl("vulns", "version", "vulns", suffix("/vulns")),
		impl("report", "url", "report", suffix("/report")),
	}, Options{RunIDs: testutil.NewFixedRunIDGenerator("run-1")})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("pkg")}, []string{"vulns", "report"})
	require.Len(t, results, 1)

	r := results[0]
	require.NoError(t, r.Err)
	assert.Equal(t, "pkg", r.Key)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, map[string]any{
		"vulns":  "pkg/json/version/vulns",
		"report": "pkg/json/url/report",
	}, r.Outputs)
}

func TestRun_ResultsInInputOrder(t *testing.T) {
	o, err := New([]Implementation{
		impl("slow", "package", "out", func(ctx context.Context, in any) (any, error) {
			if in == "first" {
				time.Sleep(20 * time.Millisecond)
			}
			return in, nil
		}),
	}, Options{Concurrency: 3})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("first"), seed("second"), seed("third")}, []string{"out"})
	require.Len(t, results, 3)
	for i, key := range []string{"first", "second", "third"} {
		assert.Equal(t, key, results[i].Key)
		assert.Equal(t, key, results[i].Outputs["out"])
	}
}

func TestRun_RunIDPerContext(t *testing.T) {
	ids := testutil.NewSequentialRunIDGenerator()
	o, err := New([]Implementation{
		impl("fetch", "package", "json", suffix("/json")),
	}, Options{RunIDs: ids})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("a"), seed("b"), seed("c")}, []string{"json"})
	require.Len(t, results, 3)

	got := []string{results[0].RunID, results[1].RunID, results[2].RunID}
	assert.ElementsMatch(t, []string{"run-1", "run-2", "run-3"}, got)
	assert.Equal(t, int64(3), ids.Issued())
}

func TestRun_FailureIsolatedToContext(t *testing.T) {
	o, err := New([]Implementation{
		impl("fetch", "package", "json", func(_ context.Context, in any) (any, error) {
			if in == "broken" {
				return nil, errors.New("404 not found")
			}
			return in, nil
		}),
		impl("count", "json", "count", func(_ context.Context, in any) (any, error) {
			return int64(len(in.(string))), nil
		}),
	}, Options{})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("good"), seed("broken"), seed("fine")}, []string{"count"})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, int64(4), results[0].Outputs["count"])

	require.Error(t, results[1].Err)
	assert.True(t, IsOperationFailed(results[1].Err))
	assert.Contains(t, results[1].Err.Error(), "404 not found")
	var re *RuntimeError
	require.ErrorAs(t, results[1].Err, &re)
	assert.Equal(t, "fetch", re.Operation)
	assert.Equal(t, "broken", re.Context)
	assert.Nil(t, results[1].Outputs)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, int64(4), results[2].Outputs["count"])
}

func TestRun_FirstProducerWins(t *testing.T) {
	o, err := New([]Implementation{
		impl("first", "package", "out", suffix("-first")),
		impl("second", "package", "out", suffix("-second")),
	}, Options{})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("p")}, []string{"out"})
	require.NoError(t, results[0].Err)
	assert.Equal(t, "p-first", results[0].Outputs["out"])
}

func TestRun_SeedIsNotOverwritten(t *testing.T) {
	o, err := New([]Implementation{
		impl("loop", "package", "package", suffix("-again")),
	}, Options{})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("p")}, []string{"package"})
	require.NoError(t, results[0].Err)
	assert.Equal(t, "p", results[0].Outputs["package"])
}

func TestRun_EachOperationRunsOnce(t *testing.T) {
	var calls atomic.Int32
	o, err := New([]Implementation{
		impl("a", "package", "x", func(_ context.Context, in any) (any, error) {
			calls.Add(1)
			return in, nil
		}),
		impl("b", "x", "package", suffix("")),
	}, Options{})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("p")}, []string{"x"})
	require.NoError(t, results[0].Err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRun_UnproducedDefinitionIsAbsent(t *testing.T) {
	o, err := New([]Implementation{
		impl("a", "package", "x", suffix("")),
		impl("b", "unreachable", "y", suffix("")),
	}, Options{})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("p")}, []string{"x", "y"})
	require.NoError(t, results[0].Err)
	assert.Equal(t, map[string]any{"x": "p"}, results[0].Outputs)
}

func TestRun_OperationTimeout(t *testing.T) {
	o, err := New([]Implementation{
		impl("hang", "package", "x", func(ctx context.Context, _ any) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	}, Options{Timeout: 10 * time.Millisecond})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("p")}, []string{"x"})
	require.Error(t, results[0].Err)
	assert.True(t, IsOperationFailed(results[0].Err))
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestRun_CancelledParent(t *testing.T) {
	o, err := New([]Implementation{impl("a", "package", "x", suffix(""))}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := o.Run(ctx, []Context{seed("p")}, []string{"x"})
	require.Error(t, results[0].Err)
	assert.True(t, IsCancelled(results[0].Err))
}

func TestRun_PanicBecomesError(t *testing.T) {
	o, err := New([]Implementation{
		impl("boom", "package", "x", func(context.Context, any) (any, error) {
			panic("bad input")
		}),
	}, Options{})
	require.NoError(t, err)

	results := o.Run(context.Background(), []Context{seed("p")}, []string{"x"})
	require.Error(t, results[0].Err)
	assert.True(t, strings.Contains(results[0].Err.Error(), "panic: bad input"))
}

func TestRun_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	o, err := New([]Implementation{
		impl("work", "package", "x", func(_ context.Context, in any) (any, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return in, nil
		}),
	}, Options{Concurrency: 2})
	require.NoError(t, err)

	contexts := make([]Context, 8)
	for i := range contexts {
		contexts[i] = seed(fmt.Sprintf("p%d", i))
	}
	results := o.Run(context.Background(), contexts, []string{"x"})
	for _, r := range results {
		require.NoError(t, r.Err)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	o, err := New([]Implementation{
		impl("fetch", "package", "x", func(_ context.Context, in any) (any, error) {
			if in == "bad" {
				return nil, errors.New("nope")
			}
			return in, nil
		}),
	}, Options{Metrics: m})
	require.NoError(t, err)

	o.Run(context.Background(), []Context{seed("ok"), seed("bad")}, []string{"x"})

	assert.Equal(t, 1.0, promtest.ToFloat64(m.OperationsTotal.WithLabelValues("fetch", observability.StatusSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.OperationsTotal.WithLabelValues("fetch", observability.StatusError)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ContextsTotal.WithLabelValues(observability.StatusError)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ContextsTotal.WithLabelValues(observability.StatusSuccess)))
}

func TestOperations_ReturnsCopies(t *testing.T) {
	o, err := New([]Implementation{impl("a", "package", "x", suffix(""))}, Options{})
	require.NoError(t, err)

	ops := o.Operations()
	ops[0].Inputs[0].Definition = "mutated"
	assert.Equal(t, "package", o.Operations()[0].Input().Definition)
}
