// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/gesture_detector/internal/motion"
)

// Epsilon is added to the standard deviation before every division so that
// normalization stays defined for a perfectly stationary sensor (std == 0).
const Epsilon = 1e-6

// ErrSensorTimeout reports that the sensor produced no fresh sample within
// the bounded ready wait.
var ErrSensorTimeout = errors.New("sensor ready timeout")

// Stats holds the per-axis calibration baseline: arithmetic mean and
// population standard deviation of the resting acceleration. Computed once
// at startup and immutable afterwards; a power cycle is the only way to
// recalibrate.
type Stats struct {
	Mean [3]float64 `json:"mean"`
	Std  [3]float64 `json:"std"`
}

// Calibrate collects n samples from src at the given spacing and computes
// per-axis mean and population standard deviation (two-pass, the full
// buffer is retained until both passes complete).
//
// Each slot must be filled before the routine proceeds. A sensor that
// reports no data is re-polled until readyTimeout elapses, after which
// calibration fails with ErrSensorTimeout rather than stalling forever.
func Calibrate(src motion.Source, n int, interval, readyTimeout time.Duration) (Stats, error) {
	if n <= 0 {
		return Stats{}, fmt.Errorf("calibration sample count must be positive, got %d", n)
	}

	buf := make([]motion.Sample, 0, n)
	for i := 0; i < n; i++ {
		s, err := nextReady(src, interval, readyTimeout)
		if err != nil {
			return Stats{}, fmt.Errorf("calibration sample %d/%d: %w", i+1, n, err)
		}
		buf = append(buf, s)
		time.Sleep(interval)
	}

	return computeStats(buf), nil
}

// nextReady polls src until it yields a sample or the deadline passes.
func nextReady(src motion.Source, poll, timeout time.Duration) (motion.Sample, error) {
	deadline := time.Now().Add(timeout)
	for {
		s, err := src.Next()
		if err == nil {
			return s, nil
		}
		if time.Now().After(deadline) {
			return motion.Sample{}, fmt.Errorf("%w after %s: %v", ErrSensorTimeout, timeout, err)
		}
		time.Sleep(poll)
	}
}

// computeStats runs the two passes over the retained buffer.
func computeStats(buf []motion.Sample) Stats {
	n := float64(len(buf))

	var st Stats
	for _, s := range buf {
		st.Mean[0] += s.Ax
		st.Mean[1] += s.Ay
		st.Mean[2] += s.Az
	}
	for axis := range st.Mean {
		st.Mean[axis] /= n
	}

	for _, s := range buf {
		dx := s.Ax - st.Mean[0]
		dy := s.Ay - st.Mean[1]
		dz := s.Az - st.Mean[2]
		st.Std[0] += dx * dx
		st.Std[1] += dy * dy
		st.Std[2] += dz * dz
	}
	for axis := range st.Std {
		st.Std[axis] = math.Sqrt(st.Std[axis] / n)
	}

	return st
}

// Normalize maps a raw sample to the classifier's input layout:
// (raw - mean) / (std + epsilon) per axis, in x, y, z order. The network
// was trained on this ordering; transposing it silently corrupts
// predictions.
func (st Stats) Normalize(s motion.Sample) [3]float32 {
	return [3]float32{
		float32((s.Ax - st.Mean[0]) / (st.Std[0] + Epsilon)),
		float32((s.Ay - st.Mean[1]) / (st.Std[1] + Epsilon)),
		float32((s.Az - st.Mean[2]) / (st.Std[2] + Epsilon)),
	}
}
