package ml

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultDim is the embedding dimensionality used across the system. The
// qdrant collection is created with the same size, so changing it requires
// re-indexing.
const DefaultDim = 256

// Keeps +, # and . inside tokens so "c++", "c#" and ".net" survive
// tokenization.
var tokenPattern = regexp.MustCompile(`[a-z0-9+#.]+`)

// Tokenize lowercases the text and splits it into vocabulary-free tokens.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.Trim(tok, ".")
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Vectorize maps text onto a fixed-size hashed bag-of-words vector with
// log-dampened counts, L2-normalized. The same text always produces the
// same vector.
func Vectorize(text string, dim int) []float64 {
	vec := make([]float64, dim)
	for _, tok := range Tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32()%uint32(dim))]++
	}
	for i, v := range vec {
		if v > 0 {
			vec[i] = 1 + math.Log(v)
		}
	}
	normalize(vec)
	return vec
}

func normalize(vec []float64) {
	n := norm(vec)
	if n == 0 {
		return
	}
	for i := range vec {
		vec[i] /= n
	}
}

func norm(vec []float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity of two equal-length vectors, or 0
// when either vector is zero.
func Cosine(a, b []float64) float64 {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}
