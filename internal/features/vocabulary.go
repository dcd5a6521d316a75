package features

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Vocabulary maps skill aliases to their canonical form. Matching is
// case-insensitive and token-boundary-aware, so "java" never fires inside
// "javascript".
type Vocabulary struct {
	patterns []skillPattern
}

type skillPattern struct {
	canonical string
	re        *regexp.Regexp
}

// NewVocabulary compiles an alias → canonical mapping. Aliases may contain
// spaces ("machine learning") and symbol-bearing names ("c++", ".net").
func NewVocabulary(aliases map[string]string) (*Vocabulary, error) {
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	// Longest alias first so "machine learning" wins over "learning";
	// alphabetical within a length for deterministic entity order on ties.
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	v := &Vocabulary{}
	for _, alias := range names {
		canonical := strings.ToLower(strings.TrimSpace(aliases[alias]))
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" || canonical == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + boundary(alias, true) + regexp.QuoteMeta(alias) + boundary(alias, false))
		if err != nil {
			return nil, fmt.Errorf("compiling skill pattern %q: %w", alias, err)
		}
		v.patterns = append(v.patterns, skillPattern{canonical: canonical, re: re})
	}
	return v, nil
}

// boundary picks a word-boundary assertion that also works for aliases
// starting or ending in non-word runes, where \b points the wrong way.
func boundary(alias string, leading bool) string {
	var edge byte
	if leading {
		edge = alias[0]
	} else {
		edge = alias[len(alias)-1]
	}
	if isWordByte(edge) {
		return `\b`
	}
	if leading {
		return `(?:^|[^a-zA-Z0-9+#])`
	}
	return `(?:$|[^a-zA-Z0-9+#])`
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// LoadVocabulary reads an alias → canonical JSON object from disk.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	var aliases map[string]string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parsing vocabulary file: %w", err)
	}
	return NewVocabulary(aliases)
}

// DefaultVocabulary covers the common software-role skills the original
// screening catalog shipped with.
func DefaultVocabulary() *Vocabulary {
	aliases := map[string]string{
		"python":           "python",
		"java":             "java",
		"javascript":       "javascript",
		"js":               "javascript",
		"typescript":       "typescript",
		"go":               "go",
		"golang":           "go",
		"c++":              "c++",
		"c#":               "c#",
		"ruby":             "ruby",
		"php":              "php",
		"rust":             "rust",
		"kotlin":           "kotlin",
		"swift":            "swift",
		"scala":            "scala",
		"r":                "r",
		"sql":              "sql",
		"mysql":            "mysql",
		"postgresql":       "postgresql",
		"postgres":         "postgresql",
		"mongodb":          "mongodb",
		"redis":            "redis",
		"elasticsearch":    "elasticsearch",
		"kafka":            "kafka",
		"rabbitmq":         "rabbitmq",
		"aws":              "aws",
		"azure":            "azure",
		"gcp":              "gcp",
		"google cloud":     "gcp",
		"docker":           "docker",
		"kubernetes":       "kubernetes",
		"k8s":              "kubernetes",
		"terraform":        "terraform",
		"ansible":          "ansible",
		"jenkins":          "jenkins",
		"git":              "git",
		"ci/cd":            "ci/cd",
		"linux":            "linux",
		"react":            "react",
		"angular":          "angular",
		"vue":              "vue",
		"node.js":          "node.js",
		"nodejs":           "node.js",
		"django":           "django",
		"flask":            "flask",
		"spring":           "spring",
		".net":             ".net",
		"graphql":          "graphql",
		"rest":             "rest",
		"grpc":             "grpc",
		"html":             "html",
		"css":              "css",
		"machine learning": "machine learning",
		"deep learning":    "deep learning",
		"nlp":              "nlp",
		"computer vision":  "computer vision",
		"tensorflow":       "tensorflow",
		"pytorch":          "pytorch",
		"scikit-learn":     "scikit-learn",
		"pandas":           "pandas",
		"numpy":            "numpy",
		"spark":            "spark",
		"hadoop":           "hadoop",
		"tableau":          "tableau",
		"power bi":         "power bi",
		"excel":            "excel",
		"data analysis":    "data analysis",
		"etl":              "etl",
		"agile":            "agile",
		"scrum":            "scrum",
		"jira":             "jira",
		"project management": "project management",
	}
	v, err := NewVocabulary(aliases)
	if err != nil {
		// The built-in aliases are static; a compile failure is a
		// programming error.
		panic(err)
	}
	return v
}
