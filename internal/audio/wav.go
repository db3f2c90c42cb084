package audio

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
)

// EncodeWAV wraps raw PCM in a RIFF/WAVE container. Zero values fall back to
// the clip defaults (24 kHz, mono, 16-bit).
func EncodeWAV(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	if channels <= 0 {
		channels = Channels
	}
	if bitsPerSample <= 0 {
		bitsPerSample = BitsPerSample
	}

	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// ParseRateFromMime extracts the rate parameter of "audio/L16;rate=24000".
// Returns 0 when absent or invalid.
func ParseRateFromMime(mime string) int {
	for _, p := range strings.Split(mime, ";") {
		p = strings.TrimSpace(p)
		if !strings.HasPrefix(strings.ToLower(p), "rate=") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(p[len("rate="):]))
		if err != nil || n <= 0 {
			return 0
		}
		return n
	}
	return 0
}
