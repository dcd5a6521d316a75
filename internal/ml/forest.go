package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Ensemble family: a random forest with bounded depth and minimum leaf
// size. The bounds are a design invariant against overfitting, not tunable
// configuration.
const (
	forestTrees    = 25
	forestMaxDepth = 6
	forestMinLeaf  = 2
)

type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Class     string    `json:"class,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

type forestModel struct {
	Trees   []*treeNode `json:"trees"`
	Classes []string    `json:"classes"`
}

func trainForest(features [][]float64, labels []string, seed int64) (*forestModel, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return nil, fmt.Errorf("%w: forest: %d features for %d labels", ErrModelFit, len(features), len(labels))
	}

	classSet := map[string]bool{}
	for _, l := range labels {
		classSet[l] = true
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	dim := len(features[0])
	subset := int(math.Sqrt(float64(dim)))
	if subset < 1 {
		subset = 1
	}

	rng := rand.New(rand.NewSource(seed))
	forest := &forestModel{Classes: classes}

	for t := 0; t < forestTrees; t++ {
		idx := make([]int, len(features))
		for i := range idx {
			idx[i] = rng.Intn(len(features))
		}
		forest.Trees = append(forest.Trees, growTree(features, labels, idx, subset, 0, rng))
	}
	return forest, nil
}

func growTree(features [][]float64, labels []string, idx []int, subset, depth int, rng *rand.Rand) *treeNode {
	if depth >= forestMaxDepth || len(idx) < 2*forestMinLeaf || pure(labels, idx) {
		return &treeNode{Leaf: true, Class: majority(labels, idx)}
	}

	dim := len(features[0])
	bestGini := math.Inf(1)
	bestFeature := -1
	var bestThreshold float64

	for k := 0; k < subset; k++ {
		f := rng.Intn(dim)
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			values = append(values, features[i][f])
		}
		sort.Float64s(values)
		for s := forestMinLeaf; s <= len(values)-forestMinLeaf; s += maxInt(1, len(values)/8) {
			if s == 0 || values[s] == values[s-1] {
				continue
			}
			threshold := (values[s] + values[s-1]) / 2
			g := splitGini(features, labels, idx, f, threshold)
			if g < bestGini {
				bestGini = g
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{Leaf: true, Class: majority(labels, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if features[i][bestFeature] < bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < forestMinLeaf || len(right) < forestMinLeaf {
		return &treeNode{Leaf: true, Class: majority(labels, idx)}
	}

	return &treeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      growTree(features, labels, left, subset, depth+1, rng),
		Right:     growTree(features, labels, right, subset, depth+1, rng),
	}
}

func splitGini(features [][]float64, labels []string, idx []int, feature int, threshold float64) float64 {
	leftCounts := map[string]int{}
	rightCounts := map[string]int{}
	nLeft, nRight := 0, 0
	for _, i := range idx {
		if features[i][feature] < threshold {
			leftCounts[labels[i]]++
			nLeft++
		} else {
			rightCounts[labels[i]]++
			nRight++
		}
	}
	total := float64(nLeft + nRight)
	return float64(nLeft)/total*gini(leftCounts, nLeft) + float64(nRight)/total*gini(rightCounts, nRight)
}

func gini(counts map[string]int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

func pure(labels []string, idx []int) bool {
	for _, i := range idx[1:] {
		if labels[i] != labels[idx[0]] {
			return false
		}
	}
	return true
}

// majority breaks count ties by the lexicographically smallest class so
// that tree growth is deterministic for a fixed seed.
func majority(labels []string, idx []int) string {
	counts := map[string]int{}
	for _, i := range idx {
		counts[labels[i]]++
	}
	best := ""
	bestCount := -1
	for class, count := range counts {
		if count > bestCount || (count == bestCount && class < best) {
			best = class
			bestCount = count
		}
	}
	return best
}

func (m *forestModel) predict(x []float64) string {
	votes := map[string]int{}
	for _, tree := range m.Trees {
		node := tree
		for !node.Leaf {
			if x[node.Feature] < node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		votes[node.Class]++
	}
	best := ""
	bestCount := -1
	for class, count := range votes {
		if count > bestCount || (count == bestCount && class < best) {
			best = class
			bestCount = count
		}
	}
	return best
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
