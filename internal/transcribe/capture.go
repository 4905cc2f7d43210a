package transcribe

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Frame is one fixed-size block of mono float samples.
type Frame []float32

// AudioSource produces capture frames. Start returns the frame channel or an
// error when the capture resource cannot be acquired (permission denial).
// The channel closes when the source runs dry or is stopped. At most one
// session owns a source at a time.
type AudioSource interface {
	Start(ctx context.Context) (<-chan Frame, error)
	Stop()
}

// ReaderSource adapts a stream of raw 16-bit little-endian PCM (16 kHz mono)
// into frames. It backs the HTTP transcription endpoint, where the request
// body carries the recorded audio.
type ReaderSource struct {
	r        io.Reader
	stop     chan struct{}
	stopOnce sync.Once
}

func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r, stop: make(chan struct{})}
}

func (s *ReaderSource) Start(ctx context.Context) (<-chan Frame, error) {
	if s.r == nil {
		return nil, fmt.Errorf("audio source unavailable")
	}

	frames := make(chan Frame)
	go func() {
		defer close(frames)
		buf := make([]byte, FrameSize*2)
		for {
			n, err := io.ReadFull(s.r, buf)
			if n > 0 {
				frame := Frame(DecodePCM(buf[:n-n%2]))
				select {
				case frames <- frame:
				case <-s.stop:
					return
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return frames, nil
}

func (s *ReaderSource) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
