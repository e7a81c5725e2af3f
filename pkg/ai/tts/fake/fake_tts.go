package fake

import (
	"context"
	"math"
	"sync"

	"github.com/innokenty/voicecast/pkg/ai/tts"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// FakeTTS is a fake TTS implementation for testing. It synthesizes a sine
// wave whose duration scales with the text length, so downstream code gets
// plausible audio without a model.
type FakeTTS struct {
	mu        sync.Mutex
	callCount int
	lastReq   tts.SynthesizeRequest
	err       error
}

// NewFakeTTS creates a new fake TTS provider.
func NewFakeTTS() *FakeTTS {
	return &FakeTTS{}
}

// FailWith makes every subsequent Synthesize call return err.
func (f *FakeTTS) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// CallCount returns how many Synthesize calls have been made.
func (f *FakeTTS) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// LastRequest returns the most recent synthesis request.
func (f *FakeTTS) LastRequest() tts.SynthesizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

// Synthesize generates sine-wave audio for the given text at 50ms per rune.
func (f *FakeTTS) Synthesize(ctx context.Context, req tts.SynthesizeRequest) (*rtc.AudioFrame, error) {
	f.mu.Lock()
	f.callCount++
	f.lastReq = req
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sampleRate := 48000
	numSamples := len([]rune(req.Text)) * sampleRate / 20
	frequency := 440.0

	samples := make([]float32, numSamples)
	for i := range samples {
		samples[i] = float32(0.3 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}

	return &rtc.AudioFrame{
		Samples:    samples,
		SampleRate: sampleRate,
	}, nil
}

// Capabilities returns the fake TTS capabilities.
func (f *FakeTTS) Capabilities() tts.TTSCapabilities {
	return tts.TTSCapabilities{
		SupportedLanguages:   []string{"ru-RU", "en-US"},
		SupportedVoices:      []string{"aidar", "baya", "kseniya", "xenia", "eugene"},
		SampleRates:          []int{16000, 48000},
		SupportsSpeedControl: true,
	}
}
