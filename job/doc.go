// Package job defines the remote job entity and its status machine.
//
// # Job Entity
//
// A [Job] is a value snapshot of one remote computation. The client never
// mutates a job locally; it replaces the snapshot wholesale with a fresh
// copy fetched from the service. Jobs move through:
//
//	starting → processing → succeeded
//	starting → processing → failed
//	starting → processing → canceled
//
// Fields of note:
//   - Input: open key→value mapping supplied at submission
//   - Output: set only once the status is succeeded
//   - Error: set only once the status is failed
//   - Logs: append-only free text; see [ParseProgress]
//   - URLs: named links, including "stream" when streaming was requested
//
// An unknown status string on the wire is a decode error, never coerced.
package job
