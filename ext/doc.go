// Package ext defines the extension system for the client.
//
// Extensions are notified of lifecycle events and can react to them:
// recording metrics, writing audit logs, forwarding traces.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnJobFinished(ctx context.Context, j *job.Job, elapsed time.Duration) error {
//	    log.Printf("job %s %s in %s", j.ID, j.Status, elapsed)
//	    return nil
//	}
//
// # Hooks
//
//   - [RequestAttempted] — the fetch engine finished one HTTP attempt
//   - [JobCreated] — the service accepted a new job
//   - [JobFinished] — Run or Wait observed a terminal status
//   - [StreamReconnecting] — a stream pump is about to reconnect
//
// Hook errors are logged and never propagated.
package ext
