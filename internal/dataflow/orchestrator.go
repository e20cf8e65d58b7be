package dataflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/shouldi/internal/graph"
	"github.com/roach88/shouldi/internal/ir"
	"github.com/roach88/shouldi/internal/observability"
)

// DefaultConcurrency bounds how many contexts run at once when
// Options.Concurrency is not set.
const DefaultConcurrency = 4

// Func computes the output value of an operation from its input value.
type Func func(ctx context.Context, in any) (any, error)

// Implementation binds an operation descriptor to the function that runs it.
type Implementation struct {
	Op  ir.Operation
	Run Func
}

// Input is one value available to a context, labeled by its definition.
type Input struct {
	Definition string
	Value      any
}

// Context is one independent evaluation unit.
type Context struct {
	Key   string
	Seeds []Input
}

// Result holds the requested outputs of one context.
// Definitions that were never produced are absent from Outputs.
type Result struct {
	Key     string
	RunID   string
	Outputs map[string]any
	Err     error
}

// Options configures an Orchestrator. Zero values select defaults.
type Options struct {
	Concurrency int           // max contexts in flight, default DefaultConcurrency
	Timeout     time.Duration // per-operation timeout, 0 disables
	Logger      *slog.Logger
	Metrics     *observability.Metrics
	RunIDs      RunIDGenerator
}

// Orchestrator runs a fixed set of implementations.
type Orchestrator struct {
	ops   []ir.Operation
	funcs map[string]Func
	opts  Options
}

// New validates impls and returns an orchestrator over them.
//
// Implementations are exported in the given order, so the same rules apply
// as for path lookup: names must be unique and each operation must have
// exactly one input and one output.
func New(impls []Implementation, opts Options) (*Orchestrator, error) {
	ops := make([]ir.Operation, 0, len(impls))
	funcs := make(map[string]Func, len(impls))
	for _, impl := range impls {
		if impl.Run == nil {
			return nil, &RuntimeError{
				Code:      ErrCodeMissingImplementation,
				Message:   "operation has no implementation",
				Operation: impl.Op.Name,
			}
		}
		ops = append(ops, impl.Op.Clone())
		funcs[impl.Op.Name] = impl.Run
	}

	lookup, err := graph.Export(ops)
	if err != nil {
		return nil, err
	}
	if err := lookup.CheckShapes(); err != nil {
		return nil, err
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RunIDs == nil {
		opts.RunIDs = UUIDv7Generator{}
	}

	return &Orchestrator{ops: ops, funcs: funcs, opts: opts}, nil
}

// Operations returns the registered descriptors in registration order.
func (o *Orchestrator) Operations() []ir.Operation {
	out := make([]ir.Operation, len(o.ops))
	for i, op := range o.ops {
		out[i] = op.Clone()
	}
	return out
}

// Run evaluates every context and returns one result per context, in input
// order. want lists the definitions to return for each context.
//
// Run never fails as a whole: per-context failures are reported in
// Result.Err.
func (o *Orchestrator) Run(ctx context.Context, contexts []Context, want []string) []Result {
	results := make([]Result, len(contexts))

	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, c := range contexts {
		g.Go(func() error {
			results[i] = o.runContext(ctx, c, want)
			o.opts.Metrics.ObserveContext(results[i].Err)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	return results
}

// runContext runs waves for one context until no operation is ready.
func (o *Orchestrator) runContext(ctx context.Context, c Context, want []string) Result {
	runID := o.opts.RunIDs.Generate()
	log := o.opts.Logger.With("context", c.Key, "run_id", runID)
	res := Result{Key: c.Key, RunID: runID}

	available := make(map[string]any, len(c.Seeds)+len(o.ops))
	for _, seed := range c.Seeds {
		if _, exists := available[seed.Definition]; !exists {
			available[seed.Definition] = seed.Value
		}
	}

	done := make(map[string]bool, len(o.ops))
	for wave := 1; ; wave++ {
		if err := ctx.Err(); err != nil {
			res.Err = &RuntimeError{
				Code:    ErrCodeCancelled,
				Message: "context run cancelled",
				Context: c.Key,
				RunID:   runID,
				Err:     err,
			}
			return res
		}

		ready := o.readyOperations(available, done)
		if len(ready) == 0 {
			break
		}
		log.Debug("running wave", "wave", wave, "operations", len(ready))

		outputs, err := o.runWave(ctx, log, ready, available)
		if err != nil {
			if re, ok := err.(*RuntimeError); ok {
				re.Context = c.Key
				re.RunID = runID
			}
			res.Err = err
			return res
		}

		// Merge in declaration order so the first producer wins.
		for i, op := range ready {
			done[op.Name] = true
			def := op.Output().Definition
			if _, exists := available[def]; !exists {
				available[def] = outputs[i]
			}
		}
	}

	res.Outputs = make(map[string]any, len(want))
	for _, def := range want {
		if v, ok := available[def]; ok {
			res.Outputs[def] = v
		}
	}
	log.Debug("context complete", "outputs", len(res.Outputs))
	return res
}

// readyOperations returns unrun operations whose input is available, in
// declaration order.
func (o *Orchestrator) readyOperations(available map[string]any, done map[string]bool) []ir.Operation {
	var ready []ir.Operation
	for _, op := range o.ops {
		if done[op.Name] {
			continue
		}
		if _, ok := available[op.Input().Definition]; ok {
			ready = append(ready, op)
		}
	}
	return ready
}

// runWave runs ready operations concurrently. The first failure cancels the
// rest of the wave.
func (o *Orchestrator) runWave(ctx context.Context, log *slog.Logger, ready []ir.Operation, available map[string]any) ([]any, error) {
	outputs := make([]any, len(ready))
	g, gctx := errgroup.WithContext(ctx)
	for i, op := range ready {
		in := available[op.Input().Definition]
		g.Go(func() error {
			out, err := o.runOperation(gctx, op, in)
			if err != nil {
				log.Warn("operation failed", "operation", op.Name, "error", err)
				return &RuntimeError{
					Code:      ErrCodeOperationFailed,
					Message:   "operation returned an error",
					Operation: op.Name,
					Err:       err,
				}
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (o *Orchestrator) runOperation(ctx context.Context, op ir.Operation, in any) (out any, err error) {
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		o.opts.Metrics.ObserveOperation(op.Name, time.Since(start), err)
	}()

	return o.funcs[op.Name](ctx, in)
}
