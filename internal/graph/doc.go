// Package graph turns operation descriptors into a traversal-ready lookup and
// reconstructs the chain of operations that links a source definition to a
// destination operation.
//
// Both Export and FindPath are pure: no I/O, no shared state, no locks. A
// lookup is built fresh per request and never mutated, so concurrent callers
// need no coordination.
//
// Ordering is part of the contract. The lookup remembers the order in which
// descriptors were exported, and when several operations produce the same
// definition FindPath picks the first one in that order.
package graph
