package fake

import (
	"context"
	"sync"

	"github.com/innokenty/voicecast/pkg/ai/stt"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// DefaultTranscript is used when no transcript is provided.
const DefaultTranscript = "This is a fake transcript from the fake STT provider."

// FakeSTT is a fake STT implementation for testing. It returns its scripted
// transcripts in order, repeating the last one when they run out.
type FakeSTT struct {
	mu          sync.Mutex
	transcripts []string
	callCount   int
	lastAudio   *rtc.AudioFrame
	err         error
}

// NewFakeSTT creates a new fake STT provider with fixed transcripts.
func NewFakeSTT(transcripts ...string) *FakeSTT {
	if len(transcripts) == 0 {
		transcripts = []string{DefaultTranscript}
	}
	return &FakeSTT{transcripts: transcripts}
}

// FailWith makes every subsequent Transcribe call return err.
func (f *FakeSTT) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// CallCount returns how many Transcribe calls have been made.
func (f *FakeSTT) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// LastAudio returns the frame passed to the most recent Transcribe call.
func (f *FakeSTT) LastAudio() *rtc.AudioFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAudio
}

// Transcribe returns the next scripted transcript.
func (f *FakeSTT) Transcribe(ctx context.Context, audio *rtc.AudioFrame) (stt.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount++
	f.lastAudio = audio
	if f.err != nil {
		return stt.Result{}, f.err
	}

	idx := f.callCount - 1
	if idx >= len(f.transcripts) {
		idx = len(f.transcripts) - 1
	}
	return stt.Result{Text: f.transcripts[idx], Language: "ru-RU"}, nil
}

// Capabilities returns the fake STT capabilities.
func (f *FakeSTT) Capabilities() stt.STTCapabilities {
	return stt.STTCapabilities{
		SupportedLanguages: []string{"ru-RU", "en-US"},
		SampleRates:        []int{16000, 48000},
	}
}
