package events

import (
	"context"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/plat-map/internal/event"
)

// CustomEvent is the DOM event name records are dispatched under.
const CustomEvent = "map-event"

// SSE wraps a Datastar generator.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE creates a Datastar SSE writer from a Huma streaming context.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Send dispatches rec as a custom event. View records also patch the
// center and zoom signals.
func (s SSE) Send(rec Record) error {
	if rec.View != nil {
		if err := s.MarshalAndPatchSignals(map[string]any{
			"center": rec.View.Center,
			"zoom":   rec.View.Zoom,
		}); err != nil {
			return err
		}
	}
	return s.DispatchCustomEvent(CustomEvent, rec)
}

// StreamBuffer is how many records a Stream queues for a slow reader.
const StreamBuffer = 64

// Stream converts events to records on the emitting goroutine and queues them
// for a reader on another goroutine. Records are dropped while the queue is full.
type Stream struct {
	bus  *event.Bus
	subs []event.Subscription

	mu     sync.Mutex
	closed bool
	ch     chan Record
}

// Subscribe starts a Stream of every event on bus.
func Subscribe(bus *event.Bus) *Stream {
	s := &Stream{bus: bus, ch: make(chan Record, StreamBuffer)}
	s.subs = bus.OnAll(s.push)
	return s
}

func (s *Stream) push(ev event.Event) {
	rec := NewRecord(ev)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- rec:
	default:
		// reader too slow, skip
	}
}

// Records returns the queue. It is closed by Close.
func (s *Stream) Records() <-chan Record { return s.ch }

// Close unsubscribes and closes the queue.
func (s *Stream) Close() {
	for _, id := range s.subs {
		s.bus.Off(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Pump sends every record from ch until ctx is done, ch is closed or a write fails.
func Pump(ctx context.Context, sse SSE, ch <-chan Record) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-ch:
			if !ok {
				return nil
			}
			if err := sse.Send(rec); err != nil {
				return err
			}
		}
	}
}

// Handler serves the event stream.
type Handler struct {
	bus *event.Bus
	log zerolog.Logger
}

// NewHandler creates a Handler over bus.
func NewHandler(bus *event.Bus, log zerolog.Logger) *Handler {
	return &Handler{bus: bus, log: log}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/events", h.Events,
		huma.OperationTags("events"),
	)
}

// Events streams canonical events until the client disconnects.
func (h *Handler) Events(ctx context.Context, input *struct{}) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			stream := Subscribe(h.bus)
			defer stream.Close()
			h.log.Debug().Msg("event stream opened")
			if err := Pump(ctx, NewSSE(humaCtx), stream.Records()); err != nil && ctx.Err() == nil {
				h.log.Warn().Err(err).Msg("event stream closed")
			}
		},
	}, nil
}
