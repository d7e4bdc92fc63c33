// Package replicate is a Go client for submitting long-running inference
// jobs to a hosted service, observing their progress and collecting results
// by polling or by consuming a server-sent event stream.
//
// The root package holds the error taxonomy and configuration shared by the
// subpackages. Most callers only need the client package.
//
// # Quick Start
//
//	c, err := client.New(client.WithToken("r8_..."))
//
//	out, err := c.Run(ctx, "owner/model", job.Input{"prompt": "hi"}, nil)
//
// # Streaming
//
//	p, err := c.Stream(ctx, "owner/model", input, nil)
//	defer p.Close()
//	for evt := range p.Events() {
//	    fmt.Print(evt)
//	}
//
// # Architecture
//
// Every network call except the stream connection goes through a single
// fetch engine (client.Client.Do) that retries on HTTP status with a
// pluggable backoff.Strategy. Streaming runs in a background stream.Pump
// that decodes event blocks and publishes them on bounded channels.
package replicate
