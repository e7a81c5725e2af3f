// Package voice provides the signal-level building blocks for turn taking:
// an energy gate deciding voice vs silence, a stop policy deciding when a
// recording has ended, and a pre-trigger ring buffer.
package voice

import (
	"log/slog"
	"math"
)

// CalibrationFrames is how many initial frames the gate spends measuring
// ambient noise before it starts classifying.
const CalibrationFrames = 10

// GateConfig configures the energy gate.
type GateConfig struct {
	// Threshold is the configured energy floor. The effective threshold
	// never drops below it even in a very quiet room.
	Threshold float64
	Logger    *slog.Logger
}

// Gate classifies audio frames as voice or silence by RMS energy against
// an adaptive threshold calibrated from ambient noise.
type Gate struct {
	cfg        GateConfig
	energies   []float64
	noiseFloor float64
	calibrated bool
	logger     *slog.Logger
}

// NewGate creates an uncalibrated gate.
func NewGate(cfg GateConfig) *Gate {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.01
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Gate{
		cfg:      cfg,
		energies: make([]float64, 0, CalibrationFrames),
		logger:   cfg.Logger,
	}
}

// Energy returns the RMS energy of the samples.
func Energy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// IsVoice reports whether the frame contains voice. The first
// CalibrationFrames frames feed the noise-floor estimate and are always
// reported as voice, so a recording can never be cut short by an
// uncalibrated gate.
func (g *Gate) IsVoice(samples []float32) bool {
	e := Energy(samples)

	if !g.calibrated {
		g.energies = append(g.energies, e)
		if len(g.energies) == CalibrationFrames {
			var sum float64
			for _, v := range g.energies {
				sum += v
			}
			g.noiseFloor = 2.0 * sum / float64(len(g.energies))
			g.calibrated = true
			g.logger.Debug("energy gate calibrated",
				slog.Float64("noise_floor", g.noiseFloor),
				slog.Float64("threshold", g.threshold()))
		}
		return true
	}

	return e > g.threshold()
}

// Calibrated reports whether the gate has finished calibration.
func (g *Gate) Calibrated() bool {
	return g.calibrated
}

// NoiseFloor returns the calibrated noise floor, 0 before calibration.
func (g *Gate) NoiseFloor() float64 {
	return g.noiseFloor
}

// threshold is the effective decision threshold.
func (g *Gate) threshold() float64 {
	return math.Max(g.cfg.Threshold, g.noiseFloor)
}

// Reset discards the calibration so the next frames re-measure ambient
// noise.
func (g *Gate) Reset() {
	g.energies = g.energies[:0]
	g.noiseFloor = 0
	g.calibrated = false
}
