package intelligence

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wavFormat struct {
	format     uint16
	channels   uint16
	sampleRate uint32
	bits       uint16
	extraChunk bool
	data       []byte
}

func buildWAV(s wavFormat) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	if s.extraChunk {
		body.WriteString("LIST")
		_ = binary.Write(&body, binary.LittleEndian, uint32(3))
		body.Write([]byte{1, 2, 3, 0})
	}
	body.WriteString("fmt ")
	_ = binary.Write(&body, binary.LittleEndian, uint32(16))
	blockAlign := s.channels * s.bits / 8
	_ = binary.Write(&body, binary.LittleEndian, s.format)
	_ = binary.Write(&body, binary.LittleEndian, s.channels)
	_ = binary.Write(&body, binary.LittleEndian, s.sampleRate)
	_ = binary.Write(&body, binary.LittleEndian, s.sampleRate*uint32(blockAlign))
	_ = binary.Write(&body, binary.LittleEndian, blockAlign)
	_ = binary.Write(&body, binary.LittleEndian, s.bits)
	body.WriteString("data")
	_ = binary.Write(&body, binary.LittleEndian, uint32(len(s.data)))
	body.Write(s.data)

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestParseWAV(t *testing.T) {
	data := make([]byte, 32000)
	info, err := ParseWAV(buildWAV(wavFormat{format: 1, channels: 1, sampleRate: 16000, bits: 16, extraChunk: true, data: data}))
	require.NoError(t, err)
	assert.Equal(t, uint32(16000), info.SampleRate)
	assert.Equal(t, uint16(1), info.Channels)
	assert.Len(t, info.Data, 32000)
	assert.InDelta(t, 1.0, info.Duration(), 0.001)
}

func TestParseWAVRejects(t *testing.T) {
	cases := map[string][]byte{
		"not riff":  []byte("hello world, not audio"),
		"too short": []byte("RIFF"),
		"float":     buildWAV(wavFormat{format: 3, channels: 1, sampleRate: 16000, bits: 32, data: make([]byte, 8)}),
		"8 bit":     buildWAV(wavFormat{format: 1, channels: 1, sampleRate: 8000, bits: 8, data: make([]byte, 8)}),
		"no data":   buildWAV(wavFormat{format: 1, channels: 1, sampleRate: 16000, bits: 16}),
	}
	for name, audio := range cases {
		_, err := ParseWAV(audio)
		assert.ErrorIs(t, err, ErrInvalidAudio, name)
	}
}

func TestParseWAVDuration(t *testing.T) {
	// 61 seconds of 8kHz mono.
	info, err := ParseWAV(buildWAV(wavFormat{format: 1, channels: 1, sampleRate: 8000, bits: 16, data: make([]byte, 8000*2*61)}))
	require.NoError(t, err)
	assert.Greater(t, info.Duration(), float64(MaxDurationSeconds))
}
