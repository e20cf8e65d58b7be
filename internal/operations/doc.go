// Package operations implements the built-in shouldi operations: PyPI
// metadata lookup, source download, the safety vulnerability check and the
// bandit static analysis run.
//
// External tools are invoked through a Runner so tests can substitute
// canned output for the real binaries.
package operations
