package ml

import (
	"math"
	"sort"
)

// Pearson returns the correlation coefficient between x and y, or 0 when
// either side has zero variance or the lengths differ.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	n := float64(len(x))

	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// MeanAbsoluteError averages |pred-want| over the two slices.
func MeanAbsoluteError(pred, want []float64) float64 {
	if len(pred) != len(want) || len(pred) == 0 {
		return 0
	}
	var sum float64
	for i := range pred {
		sum += math.Abs(pred[i] - want[i])
	}
	return sum / float64(len(pred))
}

// ClassReport holds classifier quality on one split. Precision, recall and
// F1 are macro-averaged over the labels present in want.
type ClassReport struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Examples  int     `json:"examples"`
}

// Classification scores predictions against expected labels.
func Classification(pred, want []string) ClassReport {
	report := ClassReport{Examples: len(want)}
	if len(pred) != len(want) || len(want) == 0 {
		return report
	}

	correct := 0
	tp := map[string]int{}
	fp := map[string]int{}
	fn := map[string]int{}
	seen := map[string]bool{}

	for i := range want {
		seen[want[i]] = true
		if pred[i] == want[i] {
			correct++
			tp[want[i]]++
		} else {
			fp[pred[i]]++
			fn[want[i]]++
		}
	}
	report.Accuracy = float64(correct) / float64(len(want))

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var sumP, sumR, sumF float64
	for _, label := range labels {
		var p, r float64
		if tp[label]+fp[label] > 0 {
			p = float64(tp[label]) / float64(tp[label]+fp[label])
		}
		if tp[label]+fn[label] > 0 {
			r = float64(tp[label]) / float64(tp[label]+fn[label])
		}
		var f float64
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		sumP += p
		sumR += r
		sumF += f
	}
	n := float64(len(labels))
	report.Precision = sumP / n
	report.Recall = sumR / n
	report.F1 = sumF / n
	return report
}

// EvaluationReport is the final held-out evaluation for both models,
// always computed on the test split only.
type EvaluationReport struct {
	Classifier        ClassReport `json:"classifier"`
	SimilarityPearson float64     `json:"similarity_pearson"`
	SimilarityMAE     float64     `json:"similarity_mae"`
	TestExamples      int         `json:"test_examples"`
}
