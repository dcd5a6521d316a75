package ml

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

// separableDataset builds two well-separated clusters so both families can
// learn the boundary.
func separableDataset(n int, seed int64) ([][]float64, []string) {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]float64, 0, n)
	labels := make([]string, 0, n)

	for i := 0; i < n; i++ {
		x := make([]float64, 8)
		var label string
		if i%2 == 0 {
			label = "backend"
			x[0] = 1 + rng.Float64()*0.2
			x[1] = rng.Float64() * 0.1
		} else {
			label = "frontend"
			x[0] = rng.Float64() * 0.1
			x[1] = 1 + rng.Float64()*0.2
		}
		for j := 2; j < 8; j++ {
			x[j] = rng.Float64() * 0.05
		}
		features = append(features, x)
		labels = append(labels, label)
	}
	return features, labels
}

func TestStratifiedFoldsProportions(t *testing.T) {
	labels := make([]string, 0, 50)
	for i := 0; i < 40; i++ {
		labels = append(labels, "a")
	}
	for i := 0; i < 10; i++ {
		labels = append(labels, "b")
	}

	folds := StratifiedFolds(labels, 5, 42)
	if len(folds) != 50 {
		t.Fatalf("fold assignment length = %d, want 50", len(folds))
	}

	countA := map[int]int{}
	countB := map[int]int{}
	for i, f := range folds {
		if f < 0 || f >= 5 {
			t.Fatalf("row %d assigned to fold %d, want [0,5)", i, f)
		}
		if labels[i] == "a" {
			countA[f]++
		} else {
			countB[f]++
		}
	}
	for fold := 0; fold < 5; fold++ {
		if countA[fold] != 8 {
			t.Errorf("fold %d has %d 'a' rows, want 8", fold, countA[fold])
		}
		if countB[fold] != 2 {
			t.Errorf("fold %d has %d 'b' rows, want 2", fold, countB[fold])
		}
	}
}

func TestStratifiedFoldsDeterministic(t *testing.T) {
	_, labels := separableDataset(40, 1)

	a := StratifiedFolds(labels, 4, 99)
	b := StratifiedFolds(labels, 4, 99)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("fold assignment differs for identical seed")
	}
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in   string
		want ModelFamily
	}{
		{"linear", FamilyLinear},
		{"ensemble", FamilyEnsemble},
		{"auto", FamilyAuto},
		{"", FamilyAuto},
	}
	for _, tt := range tests {
		got, err := ParseFamily(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFamily(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFamily("boosted"); !errors.Is(err, ErrConfig) {
		t.Fatalf("ParseFamily(boosted): err = %v, want ErrConfig", err)
	}
}

func TestFitClassifierSelectsAndPredicts(t *testing.T) {
	features, labels := separableDataset(60, 2)

	result, err := FitClassifier(features, labels, SelectionConfig{
		Family:          FamilyAuto,
		Folds:           5,
		Seed:            42,
		CrossValidation: true,
	})
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	if result.Selected != FamilyLinear && result.Selected != FamilyEnsemble {
		t.Fatalf("selected %q is not a candidate family", result.Selected)
	}
	if len(result.Scores) != 2 {
		t.Fatalf("got %d family scores, want 2", len(result.Scores))
	}

	pred, err := result.Model.PredictBatch(features)
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	correct := 0
	for i := range pred {
		if pred[i] == labels[i] {
			correct++
		}
	}
	if acc := float64(correct) / float64(len(labels)); acc < 0.9 {
		t.Fatalf("training accuracy %v on a separable dataset, want >= 0.9", acc)
	}
}

func TestFitClassifierDeterministicSelection(t *testing.T) {
	features, labels := separableDataset(60, 5)
	cfg := SelectionConfig{Folds: 5, Seed: 7, CrossValidation: true}

	a, err := FitClassifier(features, labels, cfg)
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}
	b, err := FitClassifier(features, labels, cfg)
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	if a.Selected != b.Selected {
		t.Fatalf("selection differs for identical input: %q vs %q", a.Selected, b.Selected)
	}
	if !reflect.DeepEqual(a.Scores, b.Scores) {
		t.Fatal("family scores differ for identical input")
	}
}

func TestFitClassifierSkipsCVWhenTooSmall(t *testing.T) {
	features, labels := separableDataset(6, 3)

	result, err := FitClassifier(features, labels, SelectionConfig{
		Folds:           5,
		Seed:            1,
		CrossValidation: true,
	})
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}
	if len(result.Scores) != 0 {
		t.Fatalf("cross-validation ran on %d rows with 5 folds", len(features))
	}
	if result.Selected != FamilyLinear {
		t.Fatalf("selected %q, want default first family %q", result.Selected, FamilyLinear)
	}
}

func TestFitClassifierFixedFamily(t *testing.T) {
	features, labels := separableDataset(60, 4)

	result, err := FitClassifier(features, labels, SelectionConfig{
		Family:          FamilyEnsemble,
		Folds:           5,
		Seed:            42,
		CrossValidation: true,
	})
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}
	if result.Selected != FamilyEnsemble {
		t.Fatalf("selected %q, want requested ensemble", result.Selected)
	}
	if result.Model.Ensemble == nil {
		t.Fatal("ensemble model not populated")
	}
}

func TestFitClassifierRejectsBadInput(t *testing.T) {
	features, labels := separableDataset(10, 6)

	if _, err := FitClassifier(nil, nil, SelectionConfig{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("empty input: err = %v, want ErrConfig", err)
	}
	if _, err := FitClassifier(features, labels[:5], SelectionConfig{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("length mismatch: err = %v, want ErrConfig", err)
	}
	if _, err := FitClassifier(features, labels, SelectionConfig{Folds: 1}); !errors.Is(err, ErrConfig) {
		t.Fatalf("folds=1: err = %v, want ErrConfig", err)
	}
}

func TestPredictBatchMatchesPredict(t *testing.T) {
	features, labels := separableDataset(40, 8)

	result, err := FitClassifier(features, labels, SelectionConfig{CrossValidation: false})
	if err != nil {
		t.Fatalf("FitClassifier: %v", err)
	}

	batch, err := result.Model.PredictBatch(features)
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	for i, x := range features {
		single, err := result.Model.Predict(x)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if single != batch[i] {
			t.Fatalf("row %d: Predict = %q, PredictBatch = %q", i, single, batch[i])
		}
	}
}

func TestEmptyClassifierErrors(t *testing.T) {
	c := &Classifier{Family: FamilyLinear}
	if _, err := c.Predict([]float64{1, 2}); !errors.Is(err, ErrModelFit) {
		t.Fatalf("err = %v, want ErrModelFit", err)
	}
}
