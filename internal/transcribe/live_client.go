package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

const defaultLiveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// LiveDialer opens websocket sessions against the live bidirectional
// endpoint.
type LiveDialer struct {
	Endpoint string
	APIKey   string
}

func NewLiveDialer(apiKey string) *LiveDialer {
	return &LiveDialer{Endpoint: defaultLiveEndpoint, APIKey: apiKey}
}

func (d *LiveDialer) Dial(ctx context.Context, cfg SessionConfig) (Transport, error) {
	url := d.Endpoint + "?key=" + d.APIKey
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial live endpoint: %w", err)
	}

	t := &liveTransport{
		conn: conn,
		msgs: make(chan ServerMessage, 16),
	}

	if err := t.writeJSON(setupMessage{Setup: buildSetup(cfg)}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	go t.readLoop()
	return t, nil
}

type liveTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	msgs    chan ServerMessage

	closeOnce sync.Once
}

func (t *liveTransport) writeJSON(v any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(v)
}

func (t *liveTransport) SendAudio(dataB64, mimeType string) error {
	msg := realtimeInputMessage{}
	msg.RealtimeInput.MediaChunks = []mediaChunk{{MimeType: mimeType, Data: dataB64}}
	if err := t.writeJSON(msg); err != nil {
		return fmt.Errorf("send audio frame: %w", err)
	}
	return nil
}

func (t *liveTransport) SendToolAck(callID, name string) error {
	msg := toolResponseMessage{}
	msg.ToolResponse.FunctionResponses = []functionResponse{{
		ID:       callID,
		Name:     name,
		Response: map[string]any{"result": "ok"},
	}}
	if err := t.writeJSON(msg); err != nil {
		return fmt.Errorf("send tool ack: %w", err)
	}
	return nil
}

func (t *liveTransport) Messages() <-chan ServerMessage {
	return t.msgs
}

func (t *liveTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}

func (t *liveTransport) readLoop() {
	defer close(t.msgs)
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			t.msgs <- ServerMessage{Err: fmt.Errorf("read live message: %w", err)}
			return
		}

		var raw serverWireMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			// unknown frame shape, skip
			continue
		}

		if raw.ServerContent != nil && raw.ServerContent.InputTranscription != nil {
			if text := raw.ServerContent.InputTranscription.Text; text != "" {
				t.msgs <- ServerMessage{Transcript: text}
			}
		}

		if raw.ToolCall != nil {
			for _, fc := range raw.ToolCall.FunctionCalls {
				args := make(map[string]string, len(fc.Args))
				for k, v := range fc.Args {
					if s, ok := v.(string); ok {
						args[k] = s
					}
				}
				t.msgs <- ServerMessage{ToolCall: &ToolCall{ID: fc.ID, Name: fc.Name, Args: args}}
			}
		}
	}
}

func buildSetup(cfg SessionConfig) setupPayload {
	p := setupPayload{
		Model: "models/" + cfg.Model,
		GenerationConfig: &liveGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
		InputAudioTranscription: &struct{}{},
	}
	if cfg.SystemInstruction != "" {
		p.SystemInstruction = &liveContent{Parts: []livePart{{Text: cfg.SystemInstruction}}}
	}
	if cfg.DeclareTargetDateTool {
		p.Tools = []liveTool{{
			FunctionDeclarations: []functionDeclaration{{
				Name:        "setTargetDate",
				Description: "Sets the project target date when the user mentions one.",
				Parameters: &functionParameters{
					Type: "OBJECT",
					Properties: map[string]functionParameter{
						"date": {Type: "STRING", Description: "The target date in YYYY-MM-DD format."},
					},
					Required: []string{"date"},
				},
			}},
		}}
	}
	return p
}

// Wire types for the live websocket protocol.

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                   string                 `json:"model"`
	GenerationConfig        *liveGenerationConfig  `json:"generationConfig,omitempty"`
	SystemInstruction       *liveContent           `json:"systemInstruction,omitempty"`
	InputAudioTranscription *struct{}              `json:"inputAudioTranscription,omitempty"`
	Tools                   []liveTool             `json:"tools,omitempty"`
}

type liveGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type liveContent struct {
	Parts []livePart `json:"parts"`
}

type livePart struct {
	Text string `json:"text,omitempty"`
}

type liveTool struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Parameters  *functionParameters `json:"parameters,omitempty"`
}

type functionParameters struct {
	Type       string                       `json:"type"`
	Properties map[string]functionParameter `json:"properties,omitempty"`
	Required   []string                     `json:"required,omitempty"`
}

type functionParameter struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type realtimeInputMessage struct {
	RealtimeInput struct {
		MediaChunks []mediaChunk `json:"mediaChunks"`
	} `json:"realtimeInput"`
}

type mediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type toolResponseMessage struct {
	ToolResponse struct {
		FunctionResponses []functionResponse `json:"functionResponses"`
	} `json:"toolResponse"`
}

type functionResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type serverWireMessage struct {
	ServerContent *struct {
		InputTranscription *struct {
			Text string `json:"text"`
		} `json:"inputTranscription"`
	} `json:"serverContent"`
	ToolCall *struct {
		FunctionCalls []struct {
			ID   string         `json:"id"`
			Name string         `json:"name"`
			Args map[string]any `json:"args"`
		} `json:"functionCalls"`
	} `json:"toolCall"`
}
