package wavio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stereoRamp(frames int) *Audio {
	a := &Audio{SampleRate: 44100, Channels: 2, Samples: make([]float32, 2*frames)}
	for i := 0; i < frames; i++ {
		v := float32(i)/float32(frames)*2 - 1
		a.Samples[2*i] = v
		a.Samples[2*i+1] = -v / 2
	}
	return a
}

// encode runs Encode into a temporary file and returns the written bytes.
func encode(t *testing.T, a *Audio, format Format) ([]byte, error) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "*.wav")
	require.NoError(t, err)
	defer f.Close()

	if err := Encode(f, a, format); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return b, nil
}

func roundTrip(t *testing.T, a *Audio, format Format) *Audio {
	t.Helper()

	b, err := encode(t, a, format)
	require.NoError(t, err)

	out, err := Decode(bytes.NewReader(b))
	require.NoError(t, err)
	return out
}

func TestEncodeHeaderFloat32(t *testing.T) {
	b, err := encode(t, stereoRamp(10), Float32)
	require.NoError(t, err)

	require.Len(t, b, 44+10*2*4)
	assert.Equal(t, "RIFF", string(b[0:4]))
	assert.Equal(t, uint32(36+80), binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, "WAVEfmt ", string(b[8:16]))
	assert.Equal(t, uint16(tagFloat), binary.LittleEndian.Uint16(b[20:]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(b[22:]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(b[24:]))
	assert.Equal(t, uint32(44100*8), binary.LittleEndian.Uint32(b[28:]))
	assert.Equal(t, uint16(8), binary.LittleEndian.Uint16(b[32:]))
	assert.Equal(t, uint16(32), binary.LittleEndian.Uint16(b[34:]))
	assert.Equal(t, "data", string(b[36:40]))
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		format Format
		tol    float64
	}{
		{Float32, 0},
		{PCM16, 1.0 / (1 << 15)},
		{PCM24, 1.0 / (1 << 23)},
	}

	in := stereoRamp(257)

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			out := roundTrip(t, in, tt.format)
			assert.Equal(t, in.SampleRate, out.SampleRate)
			assert.Equal(t, in.Channels, out.Channels)
			require.Len(t, out.Samples, len(in.Samples))

			for i := range in.Samples {
				assert.InDelta(t, in.Samples[i], out.Samples[i], tt.tol, "sample %d", i)
			}
		})
	}
}

func TestEncodeClipsIntegerFormats(t *testing.T) {
	in := &Audio{SampleRate: 8000, Channels: 1, Samples: []float32{2, -2, float32(math.NaN())}}

	out := roundTrip(t, in, PCM16)
	assert.InDelta(t, float32(32767)/32768, out.Samples[0], 1e-9)
	assert.Equal(t, float32(-1), out.Samples[1])
	assert.Equal(t, float32(0), out.Samples[2])
}

func TestEncodeValidation(t *testing.T) {
	tests := []struct {
		name  string
		audio *Audio
		fmt   Format
		want  error
	}{
		{"nil", nil, Float32, ErrInvalidAudio},
		{"zero rate", &Audio{SampleRate: 0, Channels: 1}, Float32, ErrInvalidAudio},
		{"zero channels", &Audio{SampleRate: 8000, Channels: 0}, Float32, ErrInvalidAudio},
		{"partial frame", &Audio{SampleRate: 8000, Channels: 2, Samples: []float32{1}}, Float32, ErrInvalidAudio},
		{"bad format", stereoRamp(1), Format(9), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := encode(t, tt.audio, tt.fmt)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, b)
		})
	}

	err := WriteFile(filepath.Join(t.TempDir(), "bad.wav"), nil, Float32)
	assert.ErrorIs(t, err, ErrInvalidAudio)
}

// wavBytes assembles a stream from raw chunks.
func wavBytes(chunks ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.Write(c)
	}

	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(body.Len()))
	return append(out, body.Bytes()...)
}

func chunk(id string, payload []byte) []byte {
	out := []byte(id)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	if len(payload)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func fmtPayload(tag uint16, channels, rate, bits int) []byte {
	var b []byte
	b = binary.LittleEndian.AppendUint16(b, tag)
	b = binary.LittleEndian.AppendUint16(b, uint16(channels))
	b = binary.LittleEndian.AppendUint32(b, uint32(rate))
	b = binary.LittleEndian.AppendUint32(b, uint32(rate*channels*bits/8))
	b = binary.LittleEndian.AppendUint16(b, uint16(channels*bits/8))
	b = binary.LittleEndian.AppendUint16(b, uint16(bits))
	return b
}

func TestDecodeSkipsUnknownOddChunks(t *testing.T) {
	var data []byte
	for _, v := range []int16{16384, -16384} {
		data = binary.LittleEndian.AppendUint16(data, uint16(v))
	}

	stream := wavBytes(
		chunk("fmt ", fmtPayload(tagPCM, 1, 22050, 16)),
		chunk("bext", []byte("odd")),
		chunk("data", data),
	)

	a, err := Decode(bytes.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, 22050, a.SampleRate)
	assert.Equal(t, []float32{0.5, -0.5}, a.Samples)
}

func TestDecodeExtensible(t *testing.T) {
	payload := fmtPayload(tagExtensible, 1, 48000, 24)
	payload = binary.LittleEndian.AppendUint16(payload, 22) // cbSize
	payload = binary.LittleEndian.AppendUint16(payload, 24) // valid bits
	payload = binary.LittleEndian.AppendUint32(payload, 4)  // channel mask
	payload = binary.LittleEndian.AppendUint16(payload, tagPCM)
	payload = append(payload, make([]byte, 14)...)

	data := []byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}

	a, err := Decode(bytes.NewReader(wavBytes(chunk("fmt ", payload), chunk("data", data))))
	require.NoError(t, err)
	assert.Equal(t, 48000, a.SampleRate)
	assert.Equal(t, []float32{0.5, -0.5}, a.Samples)
}

func TestDecodeWidths(t *testing.T) {
	tests := []struct {
		name string
		tag  uint16
		bits int
		data []byte
		want []float32
	}{
		{"u8", tagPCM, 8, []byte{192, 64}, []float32{0.5, -0.5}},
		{"s24", tagPCM, 24, []byte{0x00, 0x00, 0xC0}, []float32{-0.5}},
		{"s32", tagPCM, 32, binary.LittleEndian.AppendUint32(nil, 1<<30), []float32{0.5}},
		{"f32", tagFloat, 32, binary.LittleEndian.AppendUint32(nil, math.Float32bits(-0.75)), []float32{-0.75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := wavBytes(chunk("fmt ", fmtPayload(tt.tag, 1, 8000, tt.bits)), chunk("data", tt.data))

			a, err := Decode(bytes.NewReader(stream))
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Samples)
		})
	}
}

func TestDecodeDropsPartialFrame(t *testing.T) {
	var data []byte
	for _, v := range []int16{16384, -16384, 8192} {
		data = binary.LittleEndian.AppendUint16(data, uint16(v))
	}

	a, err := Decode(bytes.NewReader(wavBytes(chunk("fmt ", fmtPayload(tagPCM, 2, 8000, 16)), chunk("data", data))))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.5}, a.Samples)
	assert.Equal(t, 1, a.Frames())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		want   error
	}{
		{"empty", nil, ErrNotWAV},
		{"not riff", []byte("RIFX\x00\x00\x00\x00WAVE"), ErrNotWAV},
		{"no fmt", wavBytes(chunk("data", []byte{0, 0})), ErrMissingChunk},
		{"no data", wavBytes(chunk("fmt ", fmtPayload(tagPCM, 1, 8000, 16))), ErrMissingChunk},
		{"zero channels", wavBytes(chunk("fmt ", fmtPayload(tagPCM, 0, 8000, 16))), ErrMissingChunk},
		{"a-law", wavBytes(chunk("fmt ", fmtPayload(6, 1, 8000, 8)), chunk("data", []byte{0, 0})), ErrUnsupportedFormat},
		{"12 bit", wavBytes(chunk("fmt ", fmtPayload(tagPCM, 1, 8000, 12)), chunk("data", []byte{0, 0})), ErrUnsupportedFormat},
		{"f64", wavBytes(chunk("fmt ", fmtPayload(tagFloat, 1, 8000, 64)), chunk("data", make([]byte, 8))), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.stream))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	in := stereoRamp(64)

	require.NoError(t, WriteFile(path, in, Float32))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 64, out.Frames())
	assert.InDelta(t, 64.0/44100, out.Duration(), 1e-12)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{Float32, PCM16, PCM24} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("mp3")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "Format(7)", Format(7).String())
}
