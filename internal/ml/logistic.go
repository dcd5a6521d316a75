package ml

import (
	"fmt"
	"math"
	"sort"
)

// Linear family: multinomial logistic regression trained with full-batch
// gradient descent. The L2 penalty is fixed by design to bound overfitting.
const (
	logisticIterations = 200
	logisticRate       = 0.5
	logisticL2         = 1e-3
)

type logisticModel struct {
	Classes []string    `json:"classes"`
	Weights [][]float64 `json:"weights"` // per class: dim feature weights + bias
	Dim     int         `json:"dim"`
}

func trainLogistic(features [][]float64, labels []string) (*logisticModel, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return nil, fmt.Errorf("%w: logistic: %d features for %d labels", ErrModelFit, len(features), len(labels))
	}

	classSet := map[string]int{}
	for _, l := range labels {
		classSet[l] = 0
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for i, c := range classes {
		classSet[c] = i
	}

	dim := len(features[0])
	m := &logisticModel{Classes: classes, Dim: dim}
	m.Weights = make([][]float64, len(classes))
	for i := range m.Weights {
		m.Weights[i] = make([]float64, dim+1)
	}
	if len(classes) < 2 {
		// Single-class data: the zero model already predicts it.
		return m, nil
	}

	n := float64(len(features))
	for iter := 0; iter < logisticIterations; iter++ {
		grads := make([][]float64, len(classes))
		for i := range grads {
			grads[i] = make([]float64, dim+1)
		}

		for i, x := range features {
			probs := m.probabilities(x)
			target := classSet[labels[i]]
			for c := range classes {
				diff := probs[c]
				if c == target {
					diff -= 1
				}
				g := grads[c]
				for j, v := range x {
					g[j] += diff * v
				}
				g[dim] += diff
			}
		}

		for c := range classes {
			w := m.Weights[c]
			g := grads[c]
			for j := 0; j < dim; j++ {
				w[j] -= logisticRate * (g[j]/n + logisticL2*w[j])
			}
			w[dim] -= logisticRate * g[dim] / n
		}
	}

	for _, row := range m.Weights {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: logistic weights diverged", ErrModelFit)
			}
		}
	}
	return m, nil
}

func (m *logisticModel) probabilities(x []float64) []float64 {
	scores := make([]float64, len(m.Classes))
	maxScore := math.Inf(-1)
	for c, w := range m.Weights {
		s := w[m.Dim]
		for j, v := range x {
			if j >= m.Dim {
				break
			}
			s += w[j] * v
		}
		scores[c] = s
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	for c, s := range scores {
		scores[c] = math.Exp(s - maxScore)
		sum += scores[c]
	}
	for c := range scores {
		scores[c] /= sum
	}
	return scores
}

func (m *logisticModel) predict(x []float64) string {
	probs := m.probabilities(x)
	best := 0
	for c := 1; c < len(probs); c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return m.Classes[best]
}
