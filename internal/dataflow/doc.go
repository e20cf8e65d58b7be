// Package dataflow runs registered operations for independent contexts.
//
// Each context (one package under evaluation) starts from a set of seed
// inputs. Operations run in waves: a wave holds every operation whose input
// definition is available and which has not run yet. Waves repeat until no
// operation is ready. A context's outputs are handed back only after its last
// wave completes.
//
// Contexts are independent. An operation failure marks its own context as
// errored; other contexts keep running. Parallelism across contexts is
// bounded by Options.Concurrency.
//
// When two operations produce the same definition, the value from the
// operation declared first is kept.
package dataflow
