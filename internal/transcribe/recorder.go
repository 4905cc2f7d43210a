package transcribe

import (
	"context"
	"log"
	"time"
)

// FallbackTitle is used when title generation fails after a recording; the
// user is never blocked on a failed title call.
const FallbackTitle = "New Project from Notes"

const transcriptionInstruction = "You are a voice transcription service. Your only task is to transcribe the user's audio input accurately. Do not generate any spoken response or have a conversation."

// Titler produces a short title from transcribed notes.
type Titler interface {
	GenerateTitle(ctx context.Context, notes string) (string, error)
}

// Result is the outcome of one recording.
type Result struct {
	Notes          string `json:"notes"`
	TargetDate     string `json:"target_date,omitempty"`
	Title          string `json:"title,omitempty"`
	TitleGenerated bool   `json:"title_generated"`
}

// Recorder runs a full session over an audio source and collects its
// outcome: committed notes, any date extracted via the structured function
// call, and a generated title when the form had none.
type Recorder struct {
	dialer     Dialer
	titler     Titler
	model      string
	drainDelay time.Duration
}

func NewRecorder(dialer Dialer, titler Titler, model string, drainDelay time.Duration) *Recorder {
	return &Recorder{
		dialer:     dialer,
		titler:     titler,
		model:      model,
		drainDelay: drainDelay,
	}
}

// Record consumes the source until it runs dry (or ctx is cancelled), then
// drains and commits. currentTitle is the form's title at session start;
// when it is empty and the transcript is not, a title is generated.
func (r *Recorder) Record(ctx context.Context, source AudioSource, currentTitle string) (*Result, error) {
	session := NewSession(r.dialer, source, SessionConfig{
		Model:                 r.model,
		SystemInstruction:     transcriptionInstruction,
		DeclareTargetDateTool: true,
	}, r.drainDelay)

	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	var sessionErr error
	for ev := range session.Events() {
		switch ev.Kind {
		case EventTargetDate:
			res.TargetDate = ev.Date
		case EventError:
			sessionErr = ev.Err
		case EventCommitted:
			res.Notes = ev.Text
		}
	}

	if sessionErr != nil && res.Notes == "" {
		return nil, sessionErr
	}
	if sessionErr != nil {
		log.Printf("[warn] operation=record error=%v message=partial transcript kept", sessionErr)
	}

	if currentTitle == "" && res.Notes != "" && r.titler != nil {
		title, err := r.titler.GenerateTitle(ctx, res.Notes)
		if err != nil || title == "" {
			if err != nil {
				log.Printf("[warn] operation=record_title error=%v", err)
			}
			title = FallbackTitle
		}
		res.Title = title
		res.TitleGenerated = true
	}

	return res, nil
}
