// Package transcribe implements the live audio transcription session: a
// bidirectional streaming session that sends capture frames continuously and
// receives incremental transcript fragments plus structured function
// invocations, accumulating a final transcript on close.
package transcribe

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"
)

// State is the session lifecycle stage.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// EventKind discriminates session events.
type EventKind int

const (
	// EventFragment carries one incremental transcript fragment, in arrival
	// order.
	EventFragment EventKind = iota
	// EventTargetDate carries a validated date from a setTargetDate call.
	EventTargetDate
	// EventError carries a terminal session error.
	EventError
	// EventCommitted carries the final accumulated transcript; it is the last
	// event before the channel closes.
	EventCommitted
)

// Event is delivered on the session's event channel.
type Event struct {
	Kind EventKind
	Text string
	Date string
	Err  error
}

const (
	// DefaultDrainDelay keeps the remote connection open after capture stops
	// so trailing fragments can arrive.
	DefaultDrainDelay = 2 * time.Second

	targetDateTool = "setTargetDate"
)

var dateFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Session drives one recording. It owns the audio source and the transport
// for its lifetime; a single event-loop goroutine consumes capture frames,
// server messages and the stop signal, which guarantees fragments are
// applied in arrival order.
type Session struct {
	dialer     Dialer
	source     AudioSource
	cfg        SessionConfig
	drainDelay time.Duration

	mu         sync.Mutex
	state      State
	transcript strings.Builder

	events    chan Event
	stopCh    chan struct{}
	transport Transport
}

func NewSession(dialer Dialer, source AudioSource, cfg SessionConfig, drainDelay time.Duration) *Session {
	if drainDelay <= 0 {
		drainDelay = DefaultDrainDelay
	}
	return &Session{
		dialer:     dialer,
		source:     source,
		cfg:        cfg,
		drainDelay: drainDelay,
		state:      StateIdle,
		events:     make(chan Event, 32),
		stopCh:     make(chan struct{}, 1),
	}
}

// Events delivers fragments, tool results and the final commit. The channel
// closes once the session reaches the closed state. Fragment and target-date
// events are best-effort: the channel is bounded and a consumer that falls
// behind loses live events rather than stalling the session loop. The
// EventCommitted send blocks, so the final transcript — which accumulates
// every fragment regardless of delivery — is always observed.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the accumulated buffer so far.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.String()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Start acquires the capture source and dials the remote endpoint. On
// permission denial or connection failure the session goes straight to
// closed, the error is surfaced, and no transcript is produced.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("session already started (state %s)", s.state)
	}
	s.state = StateOpening
	s.mu.Unlock()

	frames, err := s.source.Start(ctx)
	if err != nil {
		s.failBeforeStreaming(fmt.Errorf("audio capture: %w", err))
		return fmt.Errorf("audio capture: %w", err)
	}

	transport, err := s.dialer.Dial(ctx, s.cfg)
	if err != nil {
		s.source.Stop()
		s.failBeforeStreaming(fmt.Errorf("open session: %w", err))
		return fmt.Errorf("open session: %w", err)
	}

	s.mu.Lock()
	s.transport = transport
	s.state = StateStreaming
	s.mu.Unlock()

	go s.run(ctx, frames)
	return nil
}

func (s *Session) failBeforeStreaming(err error) {
	s.setState(StateClosed)
	s.events <- Event{Kind: EventError, Err: err}
	close(s.events)
}

// Stop requests teardown. It is a no-op unless the session is currently
// streaming, which makes double-stop safe.
func (s *Session) Stop() {
	s.mu.Lock()
	streaming := s.state == StateStreaming
	s.mu.Unlock()
	if !streaming {
		return
	}
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
}

func (s *Session) run(ctx context.Context, frames <-chan Frame) {
	msgs := s.transport.Messages()
	ctxDone := ctx.Done()
	var drain <-chan time.Time

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				// capture ran dry; treat like a stop command
				frames = nil
				drain = s.beginDrain(drain)
				continue
			}
			if s.State() != StateStreaming {
				continue
			}
			// fire-and-forget against the current transport handle
			if err := s.transport.SendAudio(EncodeFrame(frame), MimeType); err != nil {
				log.Printf("[warn] operation=session_send error=%v", err)
			}

		case <-s.stopCh:
			drain = s.beginDrain(drain)

		case <-ctxDone:
			ctxDone = nil
			drain = s.beginDrain(drain)

		case msg, ok := <-msgs:
			if !ok {
				// server closed the stream cleanly; nothing more can
				// arrive, so stop capture and let the drain timer commit
				msgs = nil
				drain = s.beginDrain(drain)
				continue
			}
			if msg.Err != nil {
				s.teardown(msg.Err)
				return
			}
			if msg.Transcript != "" {
				s.mu.Lock()
				s.transcript.WriteString(msg.Transcript)
				s.mu.Unlock()
				s.emit(Event{Kind: EventFragment, Text: msg.Transcript})
			}
			if msg.ToolCall != nil {
				s.handleToolCall(msg.ToolCall)
			}

		case <-drain:
			s.teardown(nil)
			return
		}
	}
}

// beginDrain stops local capture immediately but deliberately keeps the
// remote connection open for the grace delay so in-flight fragments arrive.
// Idempotent: a second trigger while already draining changes nothing.
func (s *Session) beginDrain(existing <-chan time.Time) <-chan time.Time {
	if existing != nil {
		return existing
	}
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		return nil
	}
	s.state = StateDraining
	s.mu.Unlock()

	s.source.Stop()
	return time.After(s.drainDelay)
}

// teardown closes the transport and commits the accumulated transcript. A
// non-nil err is a remote failure: it is surfaced and the grace delay is
// skipped (the caller reaches here directly).
func (s *Session) teardown(err error) {
	s.source.Stop()
	if closeErr := s.transport.Close(); closeErr != nil {
		log.Printf("[warn] operation=session_close error=%v", closeErr)
	}
	s.setState(StateClosed)

	if err != nil {
		s.emit(Event{Kind: EventError, Err: err})
	}
	s.events <- Event{Kind: EventCommitted, Text: s.Transcript()}
	close(s.events)
}

// handleToolCall validates a structured invocation. A well-formed
// setTargetDate argument is applied and acknowledged with the invocation's
// identifier; anything malformed is silently dropped without an ack.
func (s *Session) handleToolCall(call *ToolCall) {
	if call.Name != targetDateTool {
		return
	}
	date := call.Args["date"]
	if !validTargetDate(date) {
		return
	}

	s.emit(Event{Kind: EventTargetDate, Date: date})
	if err := s.transport.SendToolAck(call.ID, call.Name); err != nil {
		log.Printf("[warn] operation=session_tool_ack error=%v", err)
	}
}

func validTargetDate(date string) bool {
	if !dateFormat.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// consumer fell behind; drop rather than block the loop
		log.Printf("[warn] operation=session_emit message=event dropped kind=%d", ev.Kind)
	}
}
