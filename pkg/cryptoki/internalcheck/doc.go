// Package internalcheck holds static policy tests that load the module's
// packages with golang.org/x/tools/go/packages and inspect their syntax.
//
// The package has no exported API and is not meant to be imported.
package internalcheck
