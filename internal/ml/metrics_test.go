package ml

import (
	"math"
	"testing"
)

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}

	if got := Pearson(x, []float64{2, 4, 6, 8, 10}); math.Abs(got-1) > 1e-12 {
		t.Fatalf("perfect correlation = %v, want 1", got)
	}
	if got := Pearson(x, []float64{10, 8, 6, 4, 2}); math.Abs(got+1) > 1e-12 {
		t.Fatalf("perfect anticorrelation = %v, want -1", got)
	}
	if got := Pearson(x, []float64{3, 3, 3, 3, 3}); got != 0 {
		t.Fatalf("zero-variance input = %v, want 0", got)
	}
	if got := Pearson(x, []float64{1, 2}); got != 0 {
		t.Fatalf("length mismatch = %v, want 0", got)
	}
}

func TestMeanAbsoluteError(t *testing.T) {
	got := MeanAbsoluteError([]float64{1, 2, 3}, []float64{2, 2, 5})
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("MAE = %v, want 1", got)
	}
	if got := MeanAbsoluteError(nil, nil); got != 0 {
		t.Fatalf("empty MAE = %v, want 0", got)
	}
}

func TestClassification(t *testing.T) {
	pred := []string{"a", "a", "b", "b", "a"}
	want := []string{"a", "b", "b", "b", "a"}

	report := Classification(pred, want)
	if report.Examples != 5 {
		t.Fatalf("examples = %d, want 5", report.Examples)
	}
	if math.Abs(report.Accuracy-0.8) > 1e-12 {
		t.Fatalf("accuracy = %v, want 0.8", report.Accuracy)
	}

	// Label a: tp=2, fp=1, fn=0 -> p=2/3, r=1.
	// Label b: tp=2, fp=0, fn=1 -> p=1, r=2/3.
	wantPrecision := (2.0/3.0 + 1.0) / 2
	wantRecall := (1.0 + 2.0/3.0) / 2
	if math.Abs(report.Precision-wantPrecision) > 1e-12 {
		t.Fatalf("precision = %v, want %v", report.Precision, wantPrecision)
	}
	if math.Abs(report.Recall-wantRecall) > 1e-12 {
		t.Fatalf("recall = %v, want %v", report.Recall, wantRecall)
	}
	if report.F1 <= 0 || report.F1 > 1 {
		t.Fatalf("f1 = %v outside (0,1]", report.F1)
	}
}

func TestClassificationPerfect(t *testing.T) {
	labels := []string{"x", "y", "x"}
	report := Classification(labels, labels)

	if report.Accuracy != 1 || report.Precision != 1 || report.Recall != 1 || report.F1 != 1 {
		t.Fatalf("perfect predictions scored %+v", report)
	}
}
