package fake

import (
	"context"
	"sync"

	"github.com/innokenty/voicecast/pkg/ai/wake"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// FakeEngine is a scripted wake engine for testing. It emits nothing until
// a configured frame count is reached, then emits one finalized fragment.
type FakeEngine struct {
	mu           sync.Mutex
	text         string
	triggerAfter int
	frameCount   int
	fired        bool
	err          error
}

// NewFakeEngine creates an engine that finalizes text after triggerAfter
// accepted frames.
func NewFakeEngine(text string, triggerAfter int) *FakeEngine {
	return &FakeEngine{text: text, triggerAfter: triggerAfter}
}

// FailWith makes every subsequent Accept call return err.
func (f *FakeEngine) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// FrameCount returns how many frames have been accepted.
func (f *FakeEngine) FrameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frameCount
}

// Accept counts the frame and fires the scripted fragment once.
func (f *FakeEngine) Accept(ctx context.Context, frame *rtc.AudioFrame) (wake.Fragment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return wake.Fragment{}, f.err
	}

	f.frameCount++
	if !f.fired && f.frameCount >= f.triggerAfter {
		f.fired = true
		return wake.Fragment{Text: f.text, Finalized: true}, nil
	}
	return wake.Fragment{}, nil
}

// Reset re-arms the engine.
func (f *FakeEngine) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frameCount = 0
	f.fired = false
}
