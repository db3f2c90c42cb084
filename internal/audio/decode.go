package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"time"
)

const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
)

var (
	ErrEmptyPayload     = errors.New("empty audio payload")
	ErrMalformedPayload = errors.New("malformed audio payload")
)

// Buffer is a mono, normalized float sample buffer ready for playback.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Decode turns a base64 PCM16LE payload into a normalized sample buffer.
func Decode(b64 string) (*Buffer, error) {
	pcm, err := DecodePCM(b64)
	if err != nil {
		return nil, err
	}
	return &Buffer{Samples: SamplesFromPCM(pcm), SampleRate: SampleRate}, nil
}

// DecodePCM returns the raw little-endian PCM bytes of a base64 payload.
// A trailing odd byte is dropped.
func DecodePCM(b64 string) ([]byte, error) {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return nil, ErrEmptyPayload
	}
	pcm, err := decodeBase64Loose(b64)
	if err != nil {
		return nil, ErrMalformedPayload
	}
	pcm = pcm[:len(pcm)-len(pcm)%2]
	if len(pcm) == 0 {
		return nil, ErrEmptyPayload
	}
	return pcm, nil
}

// SamplesFromPCM divides each signed 16-bit sample by 32768.
func SamplesFromPCM(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(s) / 32768.0
	}
	return out
}

// PCMFromSamples is the inverse of SamplesFromPCM, clamping to the int16 range.
func PCMFromSamples(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		v := f * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

func decodeBase64Loose(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}
