package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/xraph/replicate"
)

// DefaultBufferSize is the default capacity of the event and error channels.
const DefaultBufferSize = 64

// DefaultReconnectDelay is the pause before reopening a broken stream.
const DefaultReconnectDelay = time.Second

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Pump is a background task that keeps a job's event stream open and
// republishes decoded events. Both output channels are bounded; a slow
// consumer suspends the pump rather than losing events.
//
// The pump stops when it delivers a "done" event, when the initial (or a
// re-) connection fails, or when its context is canceled. A read failure
// mid-stream is reported on Errors and followed by a reconnect after a
// fixed delay. Reconnects are unbounded.
type Pump struct {
	doer   Doer
	url    string
	logger *slog.Logger

	lastEventID    string
	sessionID      string
	bufferSize     int
	reconnectDelay time.Duration
	onReconnect    func(attempt int, err error)

	buf    Buffer
	events chan Event
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Pump.
type Option func(*Pump)

// WithLastEvent resumes after evt by sending its id as Last-Event-ID.
func WithLastEvent(evt *Event) Option {
	return func(p *Pump) {
		if evt != nil {
			p.lastEventID = evt.ID
		}
	}
}

// WithBufferSize sets the capacity of the event and error channels.
func WithBufferSize(size int) Option {
	return func(p *Pump) { p.bufferSize = size }
}

// WithReconnectDelay sets the pause before reopening a broken stream.
func WithReconnectDelay(d time.Duration) Option {
	return func(p *Pump) { p.reconnectDelay = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pump) { p.logger = logger }
}

// WithSessionID tags log lines with a stream session identifier.
func WithSessionID(id string) Option {
	return func(p *Pump) { p.sessionID = id }
}

// WithReconnectHook registers fn to be called before every reconnect with
// the 1-indexed reconnect count and the failure that caused it (nil when
// the server closed the stream cleanly).
func WithReconnectHook(fn func(attempt int, err error)) Option {
	return func(p *Pump) { p.onReconnect = fn }
}

// Start launches a pump reading url. It returns immediately; the pump
// outlives the call and runs until done, a fatal error, ctx cancellation
// or Close.
func Start(ctx context.Context, doer Doer, url string, opts ...Option) *Pump {
	p := &Pump{
		doer:           doer,
		url:            url,
		logger:         slog.Default(),
		bufferSize:     DefaultBufferSize,
		reconnectDelay: DefaultReconnectDelay,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.events = make(chan Event, p.bufferSize)
	p.errs = make(chan error, p.bufferSize)

	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)

	return p
}

// Events returns the event channel. It is closed when the pump stops.
func (p *Pump) Events() <-chan Event { return p.events }

// Errors returns the error channel. It is closed when the pump stops.
func (p *Pump) Errors() <-chan error { return p.errs }

// Done is closed once the pump has stopped and both channels are closed.
func (p *Pump) Done() <-chan struct{} { return p.done }

// Close stops the pump and waits for it to exit. Safe to call more than once.
func (p *Pump) Close() error {
	p.cancel()
	<-p.done
	return nil
}

func (p *Pump) run(ctx context.Context) {
	defer func() {
		close(p.events)
		close(p.errs)
		close(p.done)
	}()

	log := p.logger.With(slog.String("url", p.url))
	if p.sessionID != "" {
		log = log.With(slog.String("stream_id", p.sessionID))
	}

	for reconnects := 0; ; {
		resp, err := p.connect(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("stream connect failed", slog.String("error", err.Error()))
				p.publishErr(ctx, err)
			}
			return
		}
		log.Debug("stream connected", slog.String("last_event_id", p.lastEventID))

		finished, readErr := p.consume(ctx, resp.Body)
		_ = resp.Body.Close()
		if finished || ctx.Err() != nil {
			log.Debug("stream stopped", slog.Bool("done", finished))
			return
		}

		if n := p.buf.Len(); n > 0 {
			log.Debug("stream dropped partial event", slog.Int("bytes", n))
		}

		if readErr != nil {
			readErr = &replicate.TransportError{Method: http.MethodGet, URL: p.url, Err: readErr}
			if !p.publishErr(ctx, readErr) {
				return
			}
		}

		reconnects++
		log.Info("stream reconnecting",
			slog.Int("attempt", reconnects),
			slog.Duration("delay", p.reconnectDelay),
		)
		if p.onReconnect != nil {
			p.onReconnect(reconnects, readErr)
		}

		timer := time.NewTimer(p.reconnectDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// connect opens the stream. Non-success statuses are returned as an
// *replicate.APIError.
func (p *Pump) connect(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate/stream: build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")
	if p.lastEventID != "" {
		req.Header.Set("Last-Event-ID", p.lastEventID)
	}

	resp, err := p.doer.Do(req)
	if err != nil {
		return nil, &replicate.TransportError{Method: http.MethodGet, URL: p.url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("replicate/stream: connect: %w", replicate.NewAPIError(resp.StatusCode, body))
	}
	return resp, nil
}

// consume reads body until it ends. finished is true when the pump must
// stop: a done event was delivered or the consumer went away. A partial
// block left by a previous connection is discarded first.
func (p *Pump) consume(ctx context.Context, body io.Reader) (finished bool, err error) {
	p.buf.Reset()
	chunk := make([]byte, 4096)

	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			_, _ = p.buf.Write(chunk[:n])
			for {
				block, ok := p.buf.Next()
				if !ok {
					break
				}
				evt, decErr := Decode(block)
				if decErr != nil {
					if !p.publishErr(ctx, decErr) {
						return true, nil
					}
					continue
				}
				if !p.publishEvent(ctx, evt) {
					return true, nil
				}
				if evt.ID != "" {
					p.lastEventID = evt.ID
				}
				if evt.IsDone() {
					return true, nil
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			return false, nil
		}
		if readErr != nil {
			return false, readErr
		}
	}
}

// publishEvent blocks until the consumer takes evt. When the consumer is
// gone it leaves a final error on the error channel if there is room.
func (p *Pump) publishEvent(ctx context.Context, evt Event) bool {
	select {
	case p.events <- evt:
		return true
	case <-ctx.Done():
		select {
		case p.errs <- fmt.Errorf("replicate/stream: send event: %w", ctx.Err()):
		default:
		}
		return false
	}
}

func (p *Pump) publishErr(ctx context.Context, err error) bool {
	select {
	case p.errs <- err:
		return true
	case <-ctx.Done():
		return false
	}
}
