package ml

// Embedder maps text to a fixed-length embedding: hashed bag-of-words
// features reweighted by a trainable per-dimension weight vector. A fresh
// embedder (all weights 1) degenerates to plain hashed features, so the
// scoring path works before any fine-tuning has happened.
type Embedder struct {
	Dim     int       `json:"dim"`
	Weights []float64 `json:"weights"`
}

func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	weights := make([]float64, dim)
	for i := range weights {
		weights[i] = 1
	}
	return &Embedder{Dim: dim, Weights: weights}
}

// Embed returns the reweighted feature vector for the text.
func (e *Embedder) Embed(text string) []float64 {
	base := Vectorize(text, e.Dim)
	out := make([]float64, e.Dim)
	for i, v := range base {
		out[i] = v * e.Weights[i]
	}
	return out
}

// Similarity returns the cosine similarity of the two texts' embeddings
// rescaled from [-1,1] to [0,1].
func (e *Embedder) Similarity(a, b string) float64 {
	return rescale(Cosine(e.Embed(a), e.Embed(b)))
}

func rescale(cosine float64) float64 {
	return (cosine + 1) / 2
}

func (e *Embedder) clone() *Embedder {
	weights := make([]float64, len(e.Weights))
	copy(weights, e.Weights)
	return &Embedder{Dim: e.Dim, Weights: weights}
}
