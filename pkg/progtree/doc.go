// Package progtree provides a Go SDK to track the progress of hierarchical work.
//
// Applications register actions in a tree and push status and progress updates
// from any goroutine. A background aggregation engine keeps every parent
// progress as the mean of its children, and renderers can poll the tree through
// read-only queries.
//
// # Quick Start
//
//	tr, err := progtree.New(progtree.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tr.Start(ctx)
//	defer tr.Close()
//
//	// Build the tree.
//	tr.InsertAction(1, progtree.RootID, 0, "Load files")
//	tr.InsertAction(2, progtree.RootID, 1, "Process data")
//	tr.InsertAction(3, 2, 0, "Chunk 1")
//
//	// Report from the workers.
//	tr.BeginStep(3)
//	tr.UpdateStepRatio(3, 10, 40)
//	tr.CompleteStep(3)
//
// # Statuses
//
// Actions follow a single path:
//
//	pending -> active -> complete
//
// Any other transition fails with [ErrOutOfOrderTransition].
//
// # Aggregation
//
// Parent progress is recalculated by the engine at most once per
// [Config].Period (1 second by default) and only when there were updates. Use
// [Tracker.Flush] to force a synchronous pass, [Tracker.Close] runs a final one.
package progtree
