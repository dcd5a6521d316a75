package features

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Entity labels emitted by the extractor.
const (
	LabelSkill  = "SKILL"
	LabelDegree = "DEGREE"
	LabelEmail  = "EMAIL"
	LabelPhone  = "PHONE"
)

// Entity is one detected span with its label, ordered by position in the
// source text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Extraction holds the structured signals derived from one document.
// Skills carry canonical forms and are deduplicated.
type Extraction struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Entities        []Entity `json:"entities"`
}

// maxPlausibleYears caps experience extraction; anything above is regex
// noise, not a career.
const maxPlausibleYears = 50.0

var (
	yearsPattern = regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d+)?)\s*\+?\s*(?:years?|yrs?)`)
	rangePattern = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:-|–|—|to|until)\s*((?:19|20)\d{2}|present|now|current)\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	degreeKeywords = []string{
		"bachelor", "master", "phd", "ph.d", "mba", "b.sc", "m.sc",
		"diploma", "degree",
	}
)

// Extractor derives skills, experience years and entities from free text.
// It is a pure function of the text and the loaded vocabulary, safe for
// concurrent use.
type Extractor struct {
	vocab *Vocabulary
}

func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Extract never fails: signals that cannot be derived are simply absent
// (empty skill set, zero experience years).
func (e *Extractor) Extract(text string) Extraction {
	var out Extraction

	type span struct {
		start int
		ent   Entity
	}
	var spans []span

	seen := map[string]bool{}
	for _, p := range e.vocab.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{start: loc[0], ent: Entity{Text: p.canonical, Label: LabelSkill}})
			if !seen[p.canonical] {
				seen[p.canonical] = true
				out.Skills = append(out.Skills, p.canonical)
			}
		}
	}
	sort.Strings(out.Skills)

	lower := strings.ToLower(text)
	for _, kw := range degreeKeywords {
		if idx := strings.Index(lower, kw); idx >= 0 {
			spans = append(spans, span{start: idx, ent: Entity{Text: kw, Label: LabelDegree}})
		}
	}
	if loc := emailPattern.FindStringIndex(text); loc != nil {
		spans = append(spans, span{start: loc[0], ent: Entity{Text: text[loc[0]:loc[1]], Label: LabelEmail}})
	}
	if loc := phonePattern.FindStringIndex(text); loc != nil {
		spans = append(spans, span{start: loc[0], ent: Entity{Text: text[loc[0]:loc[1]], Label: LabelPhone}})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for _, s := range spans {
		out.Entities = append(out.Entities, s.ent)
	}

	out.ExperienceYears = extractExperienceYears(text)
	return out
}

// extractExperienceYears returns the maximum plausible duration found via
// "N years" mentions or year ranges, clamped to [0, 50]. 0 means no
// pattern matched.
func extractExperienceYears(text string) float64 {
	best := 0.0

	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}

	currentYear := float64(time.Now().Year())
	for _, m := range rangePattern.FindAllStringSubmatch(text, -1) {
		from, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		to := currentYear
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			to = v
		}
		if span := to - from; span > best {
			best = span
		}
	}

	if best > maxPlausibleYears {
		best = maxPlausibleYears
	}
	if best < 0 {
		best = 0
	}
	return best
}
