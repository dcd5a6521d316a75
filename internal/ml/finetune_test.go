package ml

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func trainingPairs() (train, val []Pair) {
	texts := []struct {
		resume string
		job    string
		label  float64
	}{
		{"go backend engineer building grpc services", "backend engineer go grpc postgres", 0.9},
		{"python data scientist pandas numpy models", "data scientist python machine learning", 0.85},
		{"frontend react typescript developer", "react developer typescript css", 0.8},
		{"go developer kubernetes docker services", "frontend designer css html", 0.2},
		{"painter and sculptor with gallery shows", "backend engineer go grpc", 0.05},
		{"devops engineer terraform aws pipelines", "devops aws terraform kubernetes", 0.9},
		{"java spring services for payments", "java backend spring sql", 0.8},
		{"sales manager retail accounts", "python data scientist", 0.1},
		{"python machine learning researcher", "frontend react developer", 0.15},
	}
	for i, tc := range texts {
		p := Pair{ResumeText: tc.resume, JobText: tc.job, Label: tc.label}
		if i%3 == 2 {
			val = append(val, p)
		} else {
			train = append(train, p)
		}
	}
	return train, val
}

func TestFineTuneDeterministic(t *testing.T) {
	train, val := trainingPairs()
	cfg := FineTuneConfig{Epochs: 4, BatchSize: 4, LearningRate: 0.05, Seed: 7}

	a, err := NewEmbedder(64).FineTune(train, val, cfg)
	if err != nil {
		t.Fatalf("FineTune: %v", err)
	}
	b, err := NewEmbedder(64).FineTune(train, val, cfg)
	if err != nil {
		t.Fatalf("FineTune: %v", err)
	}

	if !reflect.DeepEqual(a.EpochScores, b.EpochScores) {
		t.Fatalf("epoch scores differ for identical seed:\n%v\n%v", a.EpochScores, b.EpochScores)
	}
	if !reflect.DeepEqual(a.Best.Weights, b.Best.Weights) {
		t.Fatal("best checkpoints differ for identical seed")
	}
}

func TestFineTuneKeepsBestCheckpoint(t *testing.T) {
	train, val := trainingPairs()

	result, err := NewEmbedder(64).FineTune(train, val, FineTuneConfig{
		Epochs: 6, BatchSize: 4, LearningRate: 0.05, Seed: 3,
	})
	if err != nil {
		t.Fatalf("FineTune: %v", err)
	}

	if result.Best == nil {
		t.Fatal("result has no best embedder")
	}
	max := result.EpochScores[0]
	for _, s := range result.EpochScores {
		if s > max {
			max = s
		}
	}
	if result.BestScore != max {
		t.Fatalf("best score %v is not the max epoch score %v", result.BestScore, max)
	}
}

func TestFineTuneSkipsMalformedRows(t *testing.T) {
	train, val := trainingPairs()
	train = append(train,
		Pair{ResumeText: "", JobText: "x", Label: 0.5},
		Pair{ResumeText: "x", JobText: "y", Label: 1.5},
		Pair{ResumeText: "x", JobText: "", Label: 0.5},
	)

	result, err := NewEmbedder(64).FineTune(train, val, FineTuneConfig{Epochs: 1, Seed: 1})
	if err != nil {
		t.Fatalf("FineTune: %v", err)
	}
	if result.SkippedRows != 3 {
		t.Fatalf("skipped rows = %d, want 3", result.SkippedRows)
	}
}

func TestFineTuneRejectsEmptySplits(t *testing.T) {
	train, val := trainingPairs()

	if _, err := NewEmbedder(64).FineTune(nil, val, FineTuneConfig{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("empty train split: err = %v, want ErrConfig", err)
	}
	if _, err := NewEmbedder(64).FineTune(train, nil, FineTuneConfig{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("empty validation split: err = %v, want ErrConfig", err)
	}
}

func TestFineTuneRejectsBadConfig(t *testing.T) {
	train, val := trainingPairs()

	bad := []FineTuneConfig{
		{Epochs: -1},
		{BatchSize: -2},
		{LearningRate: -0.5},
		{Patience: -1},
	}
	for _, cfg := range bad {
		if _, err := NewEmbedder(64).FineTune(train, val, cfg); !errors.Is(err, ErrConfig) {
			t.Errorf("config %+v: err = %v, want ErrConfig", cfg, err)
		}
	}
}

func TestEarlyStopperPatience(t *testing.T) {
	tests := []struct {
		scores   []float64
		patience int
		wantStop bool
		wantBest float64
	}{
		// A late new best resets the counter, so no stop.
		{[]float64{0.60, 0.65, 0.64, 0.63, 0.66}, 3, false, 0.66},
		// Three straight non-improvements exhaust patience 3.
		{[]float64{0.60, 0.65, 0.64, 0.63, 0.62}, 3, true, 0.65},
		{[]float64{0.50, 0.49, 0.48}, 2, true, 0.50},
		// Equal score is not an improvement.
		{[]float64{0.70, 0.70, 0.70}, 2, true, 0.70},
	}

	for i, tt := range tests {
		s := &earlyStopper{enabled: true, patience: tt.patience}
		stopped := false
		for _, score := range tt.scores {
			s.observe(score)
			if s.exhausted() {
				stopped = true
				break
			}
		}
		if stopped != tt.wantStop {
			t.Errorf("case %d: stopped = %v, want %v", i, stopped, tt.wantStop)
		}
		if s.best != tt.wantBest {
			t.Errorf("case %d: best = %v, want %v", i, s.best, tt.wantBest)
		}
	}
}

func TestFineTuneStopsEarly(t *testing.T) {
	train, val := trainingPairs()

	result, err := NewEmbedder(64).FineTune(train, val, FineTuneConfig{
		Epochs:        200,
		BatchSize:     4,
		LearningRate:  0.05,
		EarlyStopping: true,
		Patience:      2,
		Seed:          11,
	})
	if err != nil {
		t.Fatalf("FineTune: %v", err)
	}

	if result.StoppedEarly && result.EpochsRun == 200 {
		t.Fatal("stopped early but ran every epoch")
	}
	if !result.StoppedEarly && result.EpochsRun != 200 {
		t.Fatalf("ran %d of 200 epochs without stopping early", result.EpochsRun)
	}
	if len(result.EpochScores) != result.EpochsRun {
		t.Fatalf("epoch scores %d != epochs run %d", len(result.EpochScores), result.EpochsRun)
	}
}

func TestSimilarityRange(t *testing.T) {
	e := NewEmbedder(DefaultDim)

	for i := 0; i < 20; i++ {
		a := fmt.Sprintf("resume text number %d with go and sql", i)
		b := fmt.Sprintf("job description %d requiring python", 19-i)
		s := e.Similarity(a, b)
		if s < 0 || s > 1 {
			t.Fatalf("similarity %v outside [0,1]", s)
		}
	}

	if s := e.Similarity("identical text", "identical text"); s < 0.999 {
		t.Fatalf("self similarity = %v, want ~1", s)
	}
}
