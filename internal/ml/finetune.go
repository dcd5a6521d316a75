package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// Pair is one resume/job-description training row with a similarity target
// in [0,1].
type Pair struct {
	ResumeText string
	JobText    string
	Label      float64
}

func (p Pair) valid() bool {
	if p.ResumeText == "" || p.JobText == "" {
		return false
	}
	if math.IsNaN(p.Label) || p.Label < 0 || p.Label > 1 {
		return false
	}
	return true
}

// FineTuneConfig controls the gradient training loop.
type FineTuneConfig struct {
	Epochs        int
	BatchSize     int
	LearningRate  float64
	EarlyStopping bool
	Patience      int
	Seed          int64
}

func (c FineTuneConfig) withDefaults() FineTuneConfig {
	if c.Epochs == 0 {
		c.Epochs = 5
	}
	if c.BatchSize == 0 {
		c.BatchSize = 16
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.05
	}
	if c.Patience == 0 {
		c.Patience = 3
	}
	return c
}

func (c FineTuneConfig) validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrConfig, c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrConfig, c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrConfig, c.LearningRate)
	}
	if c.Patience < 1 {
		return fmt.Errorf("%w: patience must be positive, got %d", ErrConfig, c.Patience)
	}
	return nil
}

// FineTuneResult reports what the training loop did. Best always holds a
// usable embedder: the checkpoint from the epoch with the highest
// validation score.
type FineTuneResult struct {
	Best        *Embedder
	BestScore   float64
	EpochScores []float64
	EpochsRun   int
	StoppedEarly bool
	SkippedRows int
}

// earlyStopper implements the patience policy: the counter resets only on
// a new global best validation score.
type earlyStopper struct {
	enabled  bool
	patience int
	best     float64
	counter  int
	started  bool
}

// observe records an epoch's validation score and reports whether it is a
// new best.
func (s *earlyStopper) observe(score float64) bool {
	if !s.started || score > s.best {
		s.started = true
		s.best = score
		s.counter = 0
		return true
	}
	s.counter++
	return false
}

func (s *earlyStopper) exhausted() bool {
	return s.enabled && s.counter >= s.patience
}

type pairVectors struct {
	resume []float64
	job    []float64
	label  float64
}

// FineTune trains a copy of the embedder on the train split, scoring each
// epoch on the held-out validation split. The receiver is not mutated; the
// best checkpoint is returned in the result. Malformed rows are skipped and
// counted, never fatal; empty splits are.
func (e *Embedder) FineTune(train, val []Pair, cfg FineTuneConfig) (*FineTuneResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	result := &FineTuneResult{}

	trainVecs := e.prepare(train, &result.SkippedRows)
	valVecs := e.prepare(val, &result.SkippedRows)

	if len(trainVecs) == 0 {
		return nil, fmt.Errorf("%w: no usable training examples", ErrConfig)
	}
	if len(valVecs) == 0 {
		return nil, fmt.Errorf("%w: no usable validation examples", ErrConfig)
	}

	weights := make([]float64, e.Dim)
	copy(weights, e.Weights)

	best := e.clone()
	stopper := &earlyStopper{enabled: cfg.EarlyStopping, patience: cfg.Patience}
	rng := rand.New(rand.NewSource(cfg.Seed))

	order := make([]int, len(trainVecs))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			applyBatch(weights, trainVecs, order[start:end], cfg.LearningRate)
		}

		score := validationScore(weights, valVecs)
		result.EpochScores = append(result.EpochScores, score)
		result.EpochsRun = epoch + 1

		if stopper.observe(score) {
			copy(best.Weights, weights)
			result.BestScore = score
		}

		if stopper.exhausted() {
			result.StoppedEarly = true
			break
		}
	}

	result.Best = best
	return result, nil
}

func (e *Embedder) prepare(pairs []Pair, skipped *int) []pairVectors {
	vecs := make([]pairVectors, 0, len(pairs))
	for _, p := range pairs {
		if !p.valid() {
			*skipped++
			continue
		}
		vecs = append(vecs, pairVectors{
			resume: Vectorize(p.ResumeText, e.Dim),
			job:    Vectorize(p.JobText, e.Dim),
			label:  p.Label,
		})
	}
	return vecs
}

// applyBatch accumulates the squared-error gradient of the rescaled cosine
// against each pair's label and applies one averaged update.
func applyBatch(weights []float64, vecs []pairVectors, batch []int, lr float64) {
	dim := len(weights)
	grad := make([]float64, dim)
	used := 0

	for _, idx := range batch {
		pv := vecs[idx]
		var p, qa, qb float64
		for i := 0; i < dim; i++ {
			w2 := weights[i] * weights[i]
			p += w2 * pv.resume[i] * pv.job[i]
			qa += w2 * pv.resume[i] * pv.resume[i]
			qb += w2 * pv.job[i] * pv.job[i]
		}
		if qa == 0 || qb == 0 {
			continue
		}
		na, nb := math.Sqrt(qa), math.Sqrt(qb)
		c := p / (na * nb)
		errTerm := rescale(c) - pv.label

		for i := 0; i < dim; i++ {
			a, b, w := pv.resume[i], pv.job[i], weights[i]
			dc := (2*w*a*b)/(na*nb) - c*(w*a*a/qa+w*b*b/qb)
			grad[i] += errTerm * dc
		}
		used++
	}

	if used == 0 {
		return
	}
	for i := range weights {
		weights[i] -= lr * grad[i] / float64(used)
	}
}

// validationScore is the Pearson correlation between predicted similarities
// and labels on the validation split. Degenerate inputs score 0, which
// counts as "no improvement" for early stopping.
func validationScore(weights []float64, vecs []pairVectors) float64 {
	preds := make([]float64, len(vecs))
	labels := make([]float64, len(vecs))
	for i, pv := range vecs {
		a := make([]float64, len(weights))
		b := make([]float64, len(weights))
		for j := range weights {
			a[j] = pv.resume[j] * weights[j]
			b[j] = pv.job[j] * weights[j]
		}
		preds[i] = rescale(Cosine(a, b))
		labels[i] = pv.label
	}
	return Pearson(preds, labels)
}
