package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecisionRuleIsStrict(t *testing.T) {
	// Ties resolve to idle; any jump edge, however small, wins.
	require.False(t, Scores{Idle: 0.5, Jump: 0.5}.IsJump())
	require.True(t, Scores{Idle: 0.49999, Jump: 0.5}.IsJump())
	require.False(t, Scores{Idle: 0.5, Jump: 0.49999}.IsJump())
}

func TestDefaultModelRestingIsIdle(t *testing.T) {
	cls, err := NewClassifier()
	require.NoError(t, err)

	scores, err := cls.Scores([3]float32{0, 0, 0})
	require.NoError(t, err)
	require.False(t, scores.IsJump())
	require.Greater(t, scores.Idle, scores.Jump)
}

func TestDefaultModelSpikeIsJump(t *testing.T) {
	cls, err := NewClassifier()
	require.NoError(t, err)

	// A 3-sigma z-axis spike is well past the decision boundary.
	scores, err := cls.Scores([3]float32{0, 0, 3})
	require.NoError(t, err)
	require.True(t, scores.IsJump())
}

func TestNonFiniteFeatureFailsInference(t *testing.T) {
	cls, err := NewClassifier()
	require.NoError(t, err)

	_, err = cls.Scores([3]float32{float32(math.NaN()), 0, 0})
	require.Error(t, err)

	_, err = cls.Scores([3]float32{0, float32(math.Inf(1)), 0})
	require.Error(t, err)
}

func TestModelShapeValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"one layer", `{"layers":[{"weights":[[1,1,1]],"bias":[0]}]}`},
		{"hidden row too short", `{"layers":[{"weights":[[1,1]],"bias":[0]},{"weights":[[1],[1]],"bias":[0,0]}]}`},
		{"bias count mismatch", `{"layers":[{"weights":[[1,1,1]],"bias":[0,0]},{"weights":[[1],[1]],"bias":[0,0]}]}`},
		{"three output classes", `{"layers":[{"weights":[[1,1,1]],"bias":[0]},{"weights":[[1],[1],[1]],"bias":[0,0,0]}]}`},
		{"output row width mismatch", `{"layers":[{"weights":[[1,1,1]],"bias":[0]},{"weights":[[1,2],[1,2]],"bias":[0,0]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newClassifier([]byte(tc.data))
			require.Error(t, err)
		})
	}
}

func TestMinimalModelForwardPass(t *testing.T) {
	// Identity-ish single hidden unit: h = relu(x), idle = -h, jump = h.
	data := `{"layers":[
		{"weights":[[1,0,0]],"bias":[0]},
		{"weights":[[-1],[1]],"bias":[0,0]}
	]}`

	cls, err := newClassifier([]byte(data))
	require.NoError(t, err)

	scores, err := cls.Scores([3]float32{2, 0, 0})
	require.NoError(t, err)
	require.InDelta(t, -2, float64(scores.Idle), 1e-6)
	require.InDelta(t, 2, float64(scores.Jump), 1e-6)

	// ReLU clamps the negative side; both classes score zero → idle by tie.
	scores, err = cls.Scores([3]float32{-2, 0, 0})
	require.NoError(t, err)
	require.False(t, scores.IsJump())
}
