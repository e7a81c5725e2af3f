// Package wake provides the interface for acoustic wake-word engines.
// An engine consumes audio frames and occasionally emits a finalized text
// fragment; deciding whether a fragment contains a wake phrase is the
// caller's job.
package wake

import (
	"context"

	"github.com/innokenty/voicecast/pkg/ai"
	"github.com/innokenty/voicecast/pkg/rtc"
)

// Wake-specific error variables for backward compatibility
var (
	ErrRecoverable = ai.ErrRecoverable
	ErrFatal       = ai.ErrFatal
)

// Fragment is a piece of recognized speech. Text is only meaningful when
// Finalized is true.
type Fragment struct {
	Text      string
	Finalized bool
}

// Engine is the main interface for wake-word acoustic engines.
type Engine interface {
	// Accept feeds one audio frame to the engine and returns any fragment
	// it produced.
	Accept(ctx context.Context, frame *rtc.AudioFrame) (Fragment, error)

	// Reset discards any partial recognition state.
	Reset()
}
