// Package ir provides the shared value types for shouldi: operation
// descriptors, their input/output slots, and the named signals produced by
// an evaluation run.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Descriptors are immutable once built; accessors return copies
//   - Counts are int64, never floats
//   - All JSON tags use snake_case
package ir
