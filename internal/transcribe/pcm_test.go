package transcribe

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int16At(b []byte, i int) int16 {
	return int16(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
}

func TestEncodePCMClampsFullScale(t *testing.T) {
	out := EncodePCM([]float32{1.0, -1.0, 0, 0.5, 2.0, -3.0})

	assert.Equal(t, int16(32767), int16At(out, 0), "positive full scale clamps instead of wrapping")
	assert.Equal(t, int16(-32768), int16At(out, 1))
	assert.Equal(t, int16(0), int16At(out, 2))
	assert.Equal(t, int16(16384), int16At(out, 3))
	assert.Equal(t, int16(32767), int16At(out, 4), "overdriven sample clamps")
	assert.Equal(t, int16(-32768), int16At(out, 5))
}

func TestEncodePCMLittleEndian(t *testing.T) {
	out := EncodePCM([]float32{0.5})
	require.Len(t, out, 2)
	assert.Equal(t, byte(0x00), out[0])
	assert.Equal(t, byte(0x40), out[1])
}

func TestEncodeFrameIsBase64OfPCM(t *testing.T) {
	samples := []float32{0.25, -0.25, 1.0}
	got := EncodeFrame(samples)

	decoded, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, EncodePCM(samples), decoded)
}

func TestDecodePCMRoundTrip(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.999}
	got := DecodePCM(EncodePCM(samples))

	require.Len(t, got, len(samples))
	for i := range samples {
		assert.InDelta(t, samples[i], got[i], 1.0/32768, "sample %d", i)
	}
}

func TestDecodePCMIgnoresTrailingOddByte(t *testing.T) {
	got := DecodePCM([]byte{0x00, 0x40, 0x7f})
	require.Len(t, got, 1)
	assert.InDelta(t, 0.5, got[0], 1e-6)
}
