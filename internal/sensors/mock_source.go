// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/gesture_detector/internal/motion"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock accelerometer that rests near (0, 0, 9.8)
// with small noise and produces a sharp upward spike every few seconds,
// enough to exercise the full pipeline without hardware.
func NewMockSource() motion.Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (motion.Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	sample := motion.Sample{
		Ax: 0.05 * math.Sin(elapsed*3),
		Ay: 0.05 * math.Cos(elapsed*2),
		Az: 9.8 + 0.05*math.Sin(elapsed*5),
	}

	// Spike for ~200ms once every 4 seconds
	if math.Mod(elapsed, 4.0) < 0.2 {
		sample.Az += 6.0
	}

	return sample, nil
}
