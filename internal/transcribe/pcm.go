package transcribe

import "encoding/base64"

const (
	// SampleRate is the fixed capture rate, mono.
	SampleRate = 16000
	// FrameSize is the number of samples per transmitted frame.
	FrameSize = 4096
	// MimeType tags every transmitted audio chunk.
	MimeType = "audio/pcm;rate=16000"
)

// EncodePCM converts linear float samples in [-1.0, 1.0] to 16-bit signed
// little-endian PCM. Values are scaled by 32768 and clamped, so a sample of
// exactly 1.0 becomes 32767 rather than wrapping to -32768.
func EncodePCM(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int32(s * 32768)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// EncodeFrame produces the base64 payload for one audio frame.
func EncodeFrame(samples []float32) string {
	return base64.StdEncoding.EncodeToString(EncodePCM(samples))
}

// DecodePCM converts 16-bit signed little-endian PCM back to float samples.
// Used by audio sources that read raw PCM streams.
func DecodePCM(b []byte) []float32 {
	n := len(b) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
		out[i] = float32(v) / 32768
	}
	return out
}
