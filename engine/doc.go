// Package engine executes workflow graphs. One Engine owns the external
// collaborators (price source, exchange directory, webhook sender, notifier)
// and runs each workflow as an independent execution with its own variable
// store and log. Traversal is depth-first and single-threaded; one failing
// node aborts the whole run.
package engine
