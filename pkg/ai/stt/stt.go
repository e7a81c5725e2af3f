// Package stt provides interfaces and types for speech-to-text providers.
// Recognition here is batch: a full recorded utterance goes in, a transcript
// comes out.
package stt

import (
	"context"

	"github.com/innokenty/voicecast/pkg/ai"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// STT-specific error variables for backward compatibility
var (
	// ErrRecoverable indicates a temporary STT failure that may succeed if retried.
	// Examples: network timeout, service unavailable, rate limiting.
	ErrRecoverable = ai.ErrRecoverable

	// ErrFatal indicates a permanent STT failure that will not succeed if retried.
	// Examples: invalid audio format, unsupported language, authentication failure.
	ErrFatal = ai.ErrFatal
)

// Result is a completed recognition.
type Result struct {
	Text     string
	Language string
}

// STTCapabilities describes the capabilities of an STT provider.
type STTCapabilities struct {
	SupportedLanguages []string
	SampleRates        []int
}

// STT is the main interface for speech-to-text providers.
type STT interface {
	// Transcribe converts a complete utterance to text. An empty Text with
	// a nil error means nothing intelligible was heard.
	Transcribe(ctx context.Context, audio *rtc.AudioFrame) (Result, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() STTCapabilities
}
