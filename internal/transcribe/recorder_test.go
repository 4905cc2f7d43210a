package transcribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTitler struct {
	title string
	err   error
	calls int
}

func (f *fakeTitler) GenerateTitle(ctx context.Context, notes string) (string, error) {
	f.calls++
	return f.title, f.err
}

func TestRecorderCollectsNotesDateAndTitle(t *testing.T) {
	source := newFakeSource()
	transport := newFakeTransport()
	titler := &fakeTitler{title: "Kitchen Repaint Weekend Plan"}
	rec := NewRecorder(&fakeDialer{transport: transport}, titler, "m", 20*time.Millisecond)

	go func() {
		transport.msgs <- ServerMessage{Transcript: "Repaint the kitchen "}
		transport.msgs <- ServerMessage{ToolCall: &ToolCall{ID: "c1", Name: "setTargetDate", Args: map[string]string{"date": "2026-10-01"}}}
		transport.msgs <- ServerMessage{Transcript: "by early October."}
		close(source.frames)
	}()

	res, err := rec.Record(context.Background(), source, "")
	require.NoError(t, err)
	assert.Equal(t, "Repaint the kitchen by early October.", res.Notes)
	assert.Equal(t, "2026-10-01", res.TargetDate)
	assert.Equal(t, "Kitchen Repaint Weekend Plan", res.Title)
	assert.True(t, res.TitleGenerated)
}

func TestRecorderKeepsExistingTitle(t *testing.T) {
	source := newFakeSource()
	transport := newFakeTransport()
	titler := &fakeTitler{title: "should not be used"}
	rec := NewRecorder(&fakeDialer{transport: transport}, titler, "m", 20*time.Millisecond)

	go func() {
		transport.msgs <- ServerMessage{Transcript: "some notes"}
		close(source.frames)
	}()

	res, err := rec.Record(context.Background(), source, "My Bathroom Refresh")
	require.NoError(t, err)
	assert.Zero(t, titler.calls)
	assert.Empty(t, res.Title)
	assert.False(t, res.TitleGenerated)
}

func TestRecorderTitleFailureFallsBack(t *testing.T) {
	source := newFakeSource()
	transport := newFakeTransport()
	titler := &fakeTitler{err: errors.New("quota exceeded")}
	rec := NewRecorder(&fakeDialer{transport: transport}, titler, "m", 20*time.Millisecond)

	go func() {
		transport.msgs <- ServerMessage{Transcript: "replace the front door"}
		close(source.frames)
	}()

	res, err := rec.Record(context.Background(), source, "")
	require.NoError(t, err)
	assert.Equal(t, FallbackTitle, res.Title)
	assert.True(t, res.TitleGenerated)
}

func TestRecorderEmptyTranscriptSkipsTitle(t *testing.T) {
	source := newFakeSource()
	transport := newFakeTransport()
	titler := &fakeTitler{title: "unused"}
	rec := NewRecorder(&fakeDialer{transport: transport}, titler, "m", 20*time.Millisecond)

	go close(source.frames)

	res, err := rec.Record(context.Background(), source, "")
	require.NoError(t, err)
	assert.Zero(t, titler.calls)
	assert.Empty(t, res.Notes)
	assert.Empty(t, res.Title)
}

func TestRecorderSurfacesStartFailure(t *testing.T) {
	source := newFakeSource()
	source.startErr = errors.New("permission denied")
	rec := NewRecorder(&fakeDialer{transport: newFakeTransport()}, &fakeTitler{}, "m", 20*time.Millisecond)

	_, err := rec.Record(context.Background(), source, "")
	require.Error(t, err)
}
