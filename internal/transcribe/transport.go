package transcribe

import "context"

// ToolCall is a structured function invocation embedded in the stream. The
// carried identifier must be echoed back in the acknowledgment.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]string
}

// ServerMessage is one inbound message from the remote session. Exactly one
// field is meaningful per message; Err is terminal.
type ServerMessage struct {
	Transcript string
	ToolCall   *ToolCall
	Err        error
}

// SessionConfig names the model and the declared capabilities for a live
// session.
type SessionConfig struct {
	Model             string
	SystemInstruction string
	// DeclareTargetDateTool exposes setTargetDate(date: YYYY-MM-DD) to the
	// remote model.
	DeclareTargetDateTool bool
}

// Transport is an open bidirectional session with the remote endpoint.
// SendAudio is fire-and-forget: callers do not wait for acknowledgment of
// previous frames.
type Transport interface {
	SendAudio(dataB64, mimeType string) error
	SendToolAck(callID, name string) error
	Messages() <-chan ServerMessage
	Close() error
}

// Dialer opens live transports.
type Dialer interface {
	Dial(ctx context.Context, cfg SessionConfig) (Transport, error)
}
