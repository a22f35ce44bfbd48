// Package wavio reads and writes RIFF/WAVE files for offline rendering on
// top of go-audio/wav.
//
// Decoding accepts 8/16/24/32-bit integer PCM and 32-bit float data.
// WAVE_FORMAT_EXTENSIBLE headers are read as integer PCM. Encoding writes
// 16/24-bit PCM or 32-bit float.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-diffuser/dsp/core"
)

// Errors returned by the decoder and encoder.
var (
	ErrNotWAV            = errors.New("wavio: not a RIFF/WAVE stream")
	ErrUnsupportedFormat = errors.New("wavio: unsupported sample format")
	ErrMissingChunk      = errors.New("wavio: missing chunk")
	ErrInvalidAudio      = errors.New("wavio: invalid audio")
)

const (
	tagPCM        = 1
	tagFloat      = 3
	tagExtensible = 0xFFFE
)

// Format selects the sample encoding written by Encode.
type Format int

const (
	Float32 Format = iota
	PCM16
	PCM24
)

func (f Format) String() string {
	switch f {
	case Float32:
		return "float32"
	case PCM16:
		return "pcm16"
	case PCM24:
		return "pcm24"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a name accepted by String back to a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{Float32, PCM16, PCM24} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) bitsPerSample() int {
	switch f {
	case PCM16:
		return 16
	case PCM24:
		return 24
	default:
		return 32
	}
}

func (f Format) tag() uint16 {
	if f == Float32 {
		return tagFloat
	}
	return tagPCM
}

// Audio is interleaved float32 audio in [-1, 1].
type Audio struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Frames returns the number of sample frames.
func (a *Audio) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

func (a *Audio) validate() error {
	switch {
	case a == nil:
		return fmt.Errorf("%w: nil", ErrInvalidAudio)
	case a.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidAudio, a.SampleRate)
	case a.Channels <= 0 || a.Channels > math.MaxUint16:
		return fmt.Errorf("%w: channels %d", ErrInvalidAudio, a.Channels)
	case len(a.Samples)%a.Channels != 0:
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrInvalidAudio, len(a.Samples), a.Channels)
	}
	return nil
}

// Decode reads a complete WAVE stream.
func Decode(r io.ReadSeeker) (*Audio, error) {
	if err := checkMagic(r); err != nil {
		return nil, err
	}

	d := wav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return nil, fmt.Errorf("%w: no usable fmt chunk", ErrMissingChunk)
	}

	tag, bits := d.WavAudioFormat, int(d.BitDepth)
	if !supported(tag, bits) {
		return nil, fmt.Errorf("%w: tag %#x with %d bits", ErrUnsupportedFormat, tag, bits)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrMissingChunk, err)
	}

	// The decoder rounds odd chunk sizes up to the pad byte, which can
	// yield one trailing sample assembled from padding. Keep only whole
	// samples of the chunk and then only whole frames.
	channels := int(d.NumChans)
	n := min(len(buf.Data), d.PCMSize/(bits/8))
	buf.Data = buf.Data[:n/channels*channels]

	return &Audio{
		SampleRate: int(d.SampleRate),
		Channels:   channels,
		Samples:    toFloat(buf, tag, bits),
	}, nil
}

// checkMagic verifies the RIFF/WAVE preamble and rewinds r.
func checkMagic(r io.ReadSeeker) error {
	var head [12]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(head[0:4]) != "RIFF" || string(head[8:12]) != "WAVE" {
		return ErrNotWAV
	}

	_, err := r.Seek(0, io.SeekStart)
	return err
}

func supported(tag uint16, bits int) bool {
	switch tag {
	case tagPCM, tagExtensible:
		return bits == 8 || bits == 16 || bits == 24 || bits == 32
	case tagFloat:
		return bits == 32
	default:
		return false
	}
}

// toFloat scales decoded integers to [-1, 1]. Float data arrives as the raw
// IEEE bit patterns.
func toFloat(buf *audio.IntBuffer, tag uint16, bits int) []float32 {
	if tag == tagFloat {
		out := make([]float32, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = math.Float32frombits(uint32(v))
		}
		return out
	}

	wide := buf.AsFloatBuffer().Data
	scale := float64(int64(1) << (bits - 1))
	offset := 0.0
	if bits == 8 {
		// 8-bit PCM is unsigned.
		offset = scale
	}

	for i, v := range wide {
		wide[i] = (v - offset) / scale
	}

	return core.ToFloat32(nil, wide)
}

// Encode writes a as a canonical 44-byte-header WAVE stream.
func Encode(w io.WriteSeeker, a *Audio, format Format) error {
	if err := a.validate(); err != nil {
		return err
	}
	if format < Float32 || format > PCM24 {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}

	bits := format.bitsPerSample()
	data := make([]int, len(a.Samples))
	for i, s := range a.Samples {
		switch format {
		case Float32:
			data[i] = int(int32(math.Float32bits(s)))
		case PCM16:
			data[i] = int(quantize(s, 1<<15))
		case PCM24:
			data[i] = int(quantize(s, 1<<23))
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, bits, a.Channels, int(format.tag()))
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: a.Channels, SampleRate: a.SampleRate},
		Data:           data,
		SourceBitDepth: bits,
	})
	if err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}

	return enc.Close()
}

// quantize rounds s to a signed integer of the given full scale, clipping
// at the largest representable values.
func quantize(s float32, scale float64) int32 {
	v := math.Round(float64(s) * scale)
	if math.IsNaN(v) {
		return 0
	}
	return int32(math.Max(-scale, math.Min(scale-1, v)))
}

// ReadFile decodes the WAVE file at path.
func ReadFile(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// WriteFile encodes a into path, replacing any existing file.
func WriteFile(path string, a *Audio, format Format) error {
	if err := a.validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, a, format); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
