package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Fitness tiers derived from the total score.
const (
	CategoryStrongFit = "Strong Fit"
	CategoryMediumFit = "Medium Fit"
	CategoryWeakFit   = "Weak Fit"
)

// Tier thresholds are inclusive lower bounds: a 75.0 is a Strong Fit.
const (
	strongFitThreshold = 75.0
	mediumFitThreshold = 50.0
)

// Weights blend the three sub-scores into the total. They must sum to 1.
type Weights struct {
	Similarity float64 `json:"similarity"`
	SkillMatch float64 `json:"skill_match"`
	Experience float64 `json:"experience"`
}

// DefaultWeights is the documented 0.6 / 0.3 / 0.1 blend.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.6, SkillMatch: 0.3, Experience: 0.1}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"similarity": w.Similarity,
		"skill_match": w.SkillMatch,
		"experience": w.Experience,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("scoring weight %s must be non-negative, got %g", name, v)
		}
	}
	if sum := w.Similarity + w.SkillMatch + w.Experience; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %g", sum)
	}
	return nil
}

// Breakdown is the explainable scoring result. All sub-scores live in
// [0,100]; MissingSkills holds the job-required skills absent from the
// resume, canonical and sorted.
type Breakdown struct {
	SimilarityScore float64  `json:"similarity_score"`
	SkillMatchScore float64  `json:"skill_match_score"`
	ExperienceScore float64  `json:"experience_score"`
	TotalScore      float64  `json:"total_ai_score"`
	Category        string   `json:"category"`
	MissingSkills   []string `json:"missing_skills"`
}

// Score fuses the sub-signals into one breakdown. Pure function: no state,
// no side effects, safe for concurrent use.
//
// similarityScore is expected already scaled to [0,100].
func Score(resumeSkills, jobSkills []string, similarityScore, experienceYears, jobExpectedYears float64, weights Weights) Breakdown {
	b := Breakdown{
		SimilarityScore: clamp(similarityScore),
		MissingSkills:   []string{},
	}

	resumeSet := toSet(resumeSkills)
	jobSet := toSet(jobSkills)

	// No job skills means skill matching contributes nothing, not
	// undefined behavior.
	if len(jobSet) > 0 {
		matched := 0
		for skill := range jobSet {
			if resumeSet[skill] {
				matched++
			} else {
				b.MissingSkills = append(b.MissingSkills, skill)
			}
		}
		b.SkillMatchScore = clamp(100 * float64(matched) / float64(len(jobSet)))
	}
	sort.Strings(b.MissingSkills)

	expected := jobExpectedYears
	if expected < 1 {
		expected = 1
	}
	years := experienceYears
	if years < 0 {
		years = 0
	}
	b.ExperienceScore = clamp(100 * math.Min(1, years/expected))

	total := weights.Similarity*b.SimilarityScore +
		weights.SkillMatch*b.SkillMatchScore +
		weights.Experience*b.ExperienceScore
	b.TotalScore = math.Round(total*10) / 10

	b.Category = Categorize(b.TotalScore)
	return b
}

// Categorize maps a total score onto its fitness tier. Boundary values
// belong to the higher tier.
func Categorize(total float64) string {
	switch {
	case total >= strongFitThreshold:
		return CategoryStrongFit
	case total >= mediumFitThreshold:
		return CategoryMediumFit
	default:
		return CategoryWeakFit
	}
}

func toSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		if s != "" {
			set[s] = true
		}
	}
	return set
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
