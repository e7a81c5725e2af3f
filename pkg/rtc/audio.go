package rtc

import (
	"fmt"
	"math"
	"time"
)

// AudioFrame represents a short slice of mono PCM audio as normalized
// float32 samples in [-1, 1].
//
// A zero Timestamp means "live"; otherwise it points to the offset from
// the start of the stream.
type AudioFrame struct {
	Samples    []float32
	SampleRate int // e.g. 16 000 or 48 000
	Timestamp  time.Duration
}

// NewAudioFrame creates a frame over the given samples. The sample rate
// must be positive.
func NewAudioFrame(samples []float32, sampleRate int, timestamp time.Duration) (*AudioFrame, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	return &AudioFrame{
		Samples:    samples,
		SampleRate: sampleRate,
		Timestamp:  timestamp,
	}, nil
}

// Clone creates a deep copy of the AudioFrame.
func (f *AudioFrame) Clone() *AudioFrame {
	samples := make([]float32, len(f.Samples))
	copy(samples, f.Samples)

	return &AudioFrame{
		Samples:    samples,
		SampleRate: f.SampleRate,
		Timestamp:  f.Timestamp,
	}
}

// Duration returns the playback duration represented by this frame.
func (f *AudioFrame) Duration() time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(f.SampleRate)
}

// Int16Bytes converts the samples to 16-bit little-endian PCM, clipping
// values outside [-1, 1].
func (f *AudioFrame) Int16Bytes() []byte {
	out := make([]byte, len(f.Samples)*2)
	for i, s := range f.Samples {
		v := int16(math.Max(-32768, math.Min(32767, float64(s)*32767)))
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// FrameFromInt16 builds a frame from 16-bit little-endian PCM bytes.
// A trailing odd byte is ignored.
func FrameFromInt16(data []byte, sampleRate int, timestamp time.Duration) *AudioFrame {
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(data[i*2]) | int16(data[i*2+1])<<8
		samples[i] = float32(v) / 32768
	}
	return &AudioFrame{
		Samples:    samples,
		SampleRate: sampleRate,
		Timestamp:  timestamp,
	}
}
