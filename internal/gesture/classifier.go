package gesture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Scores is one classification result: a raw score per class. No softmax
// is applied anywhere; the decision rule only needs relative ordering.
type Scores struct {
	Idle float32 `json:"idle"`
	Jump float32 `json:"jump"`
}

// IsJump applies the two-class argmax. Strict inequality: ties resolve to
// idle.
func (s Scores) IsJump() bool {
	return s.Jump > s.Idle
}

// Scorer is the classification boundary the detector loop depends on.
type Scorer interface {
	Scores(in [3]float32) (Scores, error)
}

// modelFile is the on-disk/embedded weight format: a dense feed-forward
// network, ReLU on every layer except the last.
type modelFile struct {
	Layers []modelLayer `json:"layers"`
}

type modelLayer struct {
	Weights [][]float32 `json:"weights"`
	Bias    []float32   `json:"bias"`
}

//go:embed model.json
var defaultModel []byte

// Classifier is the fixed pre-trained 3-input, 2-class network. It is an
// explicitly owned value: constructed once at startup and passed into the
// detector loop, never reached through package-level state.
type Classifier struct {
	hidden modelLayer
	out    modelLayer
}

// NewClassifier builds the classifier from the embedded default weights.
func NewClassifier() (*Classifier, error) {
	return newClassifier(defaultModel)
}

// LoadClassifier builds the classifier from a weight file on disk.
func LoadClassifier(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return newClassifier(data)
}

func newClassifier(data []byte) (*Classifier, error) {
	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if len(m.Layers) != 2 {
		return nil, fmt.Errorf("model must have exactly 2 layers, got %d", len(m.Layers))
	}

	hidden, out := m.Layers[0], m.Layers[1]
	if len(hidden.Weights) == 0 || len(hidden.Weights) != len(hidden.Bias) {
		return nil, fmt.Errorf("hidden layer: %d weight rows vs %d biases", len(hidden.Weights), len(hidden.Bias))
	}
	for i, row := range hidden.Weights {
		if len(row) != 3 {
			return nil, fmt.Errorf("hidden layer row %d: expected 3 inputs, got %d", i, len(row))
		}
	}
	if len(out.Weights) != 2 || len(out.Bias) != 2 {
		return nil, fmt.Errorf("output layer: expected 2 classes, got %d rows / %d biases", len(out.Weights), len(out.Bias))
	}
	for i, row := range out.Weights {
		if len(row) != len(hidden.Bias) {
			return nil, fmt.Errorf("output layer row %d: expected %d inputs, got %d", i, len(hidden.Bias), len(row))
		}
	}

	return &Classifier{hidden: hidden, out: out}, nil
}

// Scores runs one forward pass. A non-finite feature vector fails the
// invocation; the caller skips the cycle and carries on.
func (c *Classifier) Scores(in [3]float32) (Scores, error) {
	for axis, v := range in {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Scores{}, fmt.Errorf("non-finite feature on axis %d: %v", axis, v)
		}
	}

	h := make([]float32, len(c.hidden.Bias))
	for i, row := range c.hidden.Weights {
		v := c.hidden.Bias[i]
		for j := range in {
			v += row[j] * in[j]
		}
		if v < 0 {
			v = 0
		}
		h[i] = v
	}

	var out [2]float32
	for i, row := range c.out.Weights {
		v := c.out.Bias[i]
		for j := range h {
			v += row[j] * h[j]
		}
		out[i] = v
	}

	return Scores{Idle: out[0], Jump: out[1]}, nil
}
