package voice

import "time"

// StopConfig configures the recording stop policy.
type StopConfig struct {
	// MinRecording is how long a recording must run before silence can
	// stop it.
	MinRecording time.Duration
	// PauseThreshold is how much consecutive silence ends the recording.
	PauseThreshold time.Duration
	// FramesPerSecond is the rate at which Observe is called.
	FramesPerSecond int
}

// StopPolicy decides when a recording should stop on a pause. It only
// handles the pause condition; the overall recording deadline is the
// caller's to enforce.
type StopPolicy struct {
	cfg          StopConfig
	silentFrames int
}

// NewStopPolicy creates a stop policy. Zero config fields get defaults
// matching a 10ms frame cadence.
func NewStopPolicy(cfg StopConfig) *StopPolicy {
	if cfg.PauseThreshold == 0 {
		cfg.PauseThreshold = 1500 * time.Millisecond
	}
	if cfg.FramesPerSecond == 0 {
		cfg.FramesPerSecond = 100
	}
	return &StopPolicy{cfg: cfg}
}

// Observe records one frame's voice decision. Any voiced frame resets the
// silence run.
func (p *StopPolicy) Observe(voiced bool) {
	if voiced {
		p.silentFrames = 0
	} else {
		p.silentFrames++
	}
}

// SilenceDuration returns the length of the current consecutive-silence run.
func (p *StopPolicy) SilenceDuration() time.Duration {
	return time.Duration(p.silentFrames) * time.Second / time.Duration(p.cfg.FramesPerSecond)
}

// ShouldStop reports whether the recording should end now, given how long
// it has been running. Silence never stops a recording shorter than
// MinRecording.
func (p *StopPolicy) ShouldStop(elapsed time.Duration) bool {
	if elapsed < p.cfg.MinRecording {
		return false
	}
	return p.SilenceDuration() >= p.cfg.PauseThreshold
}

// Reset clears the silence run for a new recording.
func (p *StopPolicy) Reset() {
	p.silentFrames = 0
}
