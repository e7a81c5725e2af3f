package tts

import (
	"context"

	"github.com/innokenty/voicecast/pkg/ai"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// TTS-specific error variables for backward compatibility
var (
	// ErrRecoverable indicates a temporary TTS failure that may succeed if retried.
	// Examples: service overload, temporary quota exceeded, network issues.
	ErrRecoverable = ai.ErrRecoverable

	// ErrFatal indicates a permanent TTS failure that will not succeed if retried.
	// Examples: invalid voice ID, unsupported text format, permanent quota exceeded.
	ErrFatal = ai.ErrFatal
)

// SynthesizeRequest contains parameters for text-to-speech synthesis.
// An empty Voice means the provider default.
type SynthesizeRequest struct {
	Text     string
	Voice    string
	Language string
	Speed    float32
}

// TTSCapabilities describes the capabilities of a TTS provider.
type TTSCapabilities struct {
	SupportedLanguages   []string
	SupportedVoices      []string
	SampleRates          []int
	SupportsSpeedControl bool
}

// TTS is the main interface for text-to-speech providers.
type TTS interface {
	// Synthesize converts text to a single audio frame holding the whole
	// utterance.
	Synthesize(ctx context.Context, req SynthesizeRequest) (*rtc.AudioFrame, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() TTSCapabilities
}
