package gesture

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gesture_detector/internal/motion"
)

// constSource always returns the same sample.
type constSource struct {
	sample motion.Sample
}

func (s *constSource) Next() (motion.Sample, error) {
	return s.sample, nil
}

// slowSource fails the first failures calls, then behaves like constSource.
type slowSource struct {
	sample   motion.Sample
	failures int
	calls    int
}

func (s *slowSource) Next() (motion.Sample, error) {
	s.calls++
	if s.calls <= s.failures {
		return motion.Sample{}, errors.New("data not ready")
	}
	return s.sample, nil
}

// deadSource never produces a sample.
type deadSource struct{}

func (deadSource) Next() (motion.Sample, error) {
	return motion.Sample{}, errors.New("data not ready")
}

func TestCalibrateConstantWindow(t *testing.T) {
	// A resting sensor repeating the exact same vector must calibrate to
	// that vector with zero deviation, and the resting vector itself must
	// normalize to the origin on all three axes.
	src := &constSource{sample: motion.Sample{Ax: 1.0, Ay: 0.0, Az: 9.8}}

	stats, err := Calibrate(src, 200, 0, 10*time.Millisecond)
	require.NoError(t, err)

	require.InDelta(t, 1.0, stats.Mean[0], 1e-9)
	require.InDelta(t, 0.0, stats.Mean[1], 1e-9)
	require.InDelta(t, 9.8, stats.Mean[2], 1e-9)
	for axis := range stats.Std {
		require.InDelta(t, 0, stats.Std[axis], 1e-9, "axis %d", axis)
	}

	in := stats.Normalize(motion.Sample{Ax: 1.0, Ay: 0.0, Az: 9.8})
	for axis := range in {
		require.InDelta(t, 0, float64(in[axis]), 1e-4, "axis %d", axis)
	}
}

func TestComputeStatsPopulationStdDev(t *testing.T) {
	buf := []motion.Sample{
		{Ax: 1, Ay: 2, Az: 10},
		{Ax: 2, Ay: 2, Az: 10},
		{Ax: 3, Ay: 2, Az: 10},
		{Ax: 4, Ay: 2, Az: 10},
	}

	stats := computeStats(buf)

	require.InDelta(t, 2.5, stats.Mean[0], 1e-12)
	// Population std, divisor N not N-1: sqrt(5/4)
	require.InDelta(t, 1.1180339887498949, stats.Std[0], 1e-12)
	require.InDelta(t, 0, stats.Std[1], 1e-12)
	require.InDelta(t, 0, stats.Std[2], 1e-12)
}

func TestNormalizeDefinedForZeroStd(t *testing.T) {
	stats := Stats{Mean: [3]float64{5, 5, 5}}

	// std == 0 on every axis; epsilon keeps the division defined.
	in := stats.Normalize(motion.Sample{Ax: 6, Ay: 5, Az: 4})
	for axis, v := range in {
		require.False(t, float64(v) != float64(v), "axis %d is NaN", axis)
	}
	require.Greater(t, in[0], float32(0))
	require.Equal(t, float32(0), in[1])
	require.Less(t, in[2], float32(0))
}

func TestNormalizePreservesAxisOrder(t *testing.T) {
	stats := Stats{
		Mean: [3]float64{1, 2, 3},
		Std:  [3]float64{1, 1, 1},
	}

	in := stats.Normalize(motion.Sample{Ax: 2, Ay: 4, Az: 6})
	require.InDelta(t, 1, float64(in[0]), 1e-5)
	require.InDelta(t, 2, float64(in[1]), 1e-5)
	require.InDelta(t, 3, float64(in[2]), 1e-5)
}

func TestCalibrateTimesOutOnDeadSensor(t *testing.T) {
	_, err := Calibrate(deadSource{}, 10, time.Millisecond, 5*time.Millisecond)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSensorTimeout)
}

func TestCalibrateWaitsOutSlowSensor(t *testing.T) {
	src := &slowSource{sample: motion.Sample{Az: 9.8}, failures: 3}

	stats, err := Calibrate(src, 5, 0, 100*time.Millisecond)
	require.NoError(t, err)
	require.InDelta(t, 9.8, stats.Mean[2], 1e-9)
}

func TestCalibrateRejectsNonPositiveCount(t *testing.T) {
	_, err := Calibrate(&constSource{}, 0, time.Millisecond, time.Millisecond)
	require.Error(t, err)
}
