// Package pipeline runs security.txt files through a sequence of steps.
//
// A check reads the input, validates and normalizes it and stores the run
// in the history database. Signing adds a confirmation, the clear-signing
// itself and the output write. Every step receives the same *model.Run.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. check and sign share most steps and differ only in the tail
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
//
// BatchProcessor runs one pipeline per input file with concurrency control
// using errgroup, keeping results in input order.
package pipeline
