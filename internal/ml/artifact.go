package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Artifact names used by the training pipeline and the registry.
const (
	ArtifactSimilarity = "similarity"
	ArtifactClassifier = "classifier"
)

// ArtifactMeta describes a persisted model: the validation metric that
// justified its selection and the configuration that produced it.
type ArtifactMeta struct {
	Name      string          `json:"name"`
	Version   string          `json:"version"`
	Metric    float64         `json:"metric"`
	Config    json.RawMessage `json:"config,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ArtifactStore persists versioned, immutable model artifacts under a base
// directory. Each artifact is a directory holding model.json + meta.json,
// staged in a temp dir and renamed into place so a half-written artifact is
// never visible. Superseded versions are kept; cleanup is the operator's
// concern.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Save writes the model and its metadata as a new version and returns the
// artifact directory path.
func (s *ArtifactStore) Save(name string, model any, meta ArtifactMeta) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating artifact dir: %v", ErrArtifactIO, err)
	}

	meta.Name = name
	if meta.Version == "" {
		meta.Version = time.Now().UTC().Format("20060102T150405.000000000")
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	staging, err := os.MkdirTemp(s.dir, "."+name+"-staging-")
	if err != nil {
		return "", fmt.Errorf("%w: creating staging dir: %v", ErrArtifactIO, err)
	}
	defer os.RemoveAll(staging)

	if err := writeJSON(filepath.Join(staging, "model.json"), model); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(staging, "meta.json"), meta); err != nil {
		return "", err
	}

	final := filepath.Join(s.dir, fmt.Sprintf("%s-v%s", name, meta.Version))
	if err := os.Rename(staging, final); err != nil {
		return "", fmt.Errorf("%w: publishing artifact %s: %v", ErrArtifactIO, final, err)
	}
	return final, nil
}

// Load reads an artifact directory back into model and returns its
// metadata.
func (s *ArtifactStore) Load(path string, model any) (*ArtifactMeta, error) {
	if err := readJSON(filepath.Join(path, "model.json"), model); err != nil {
		return nil, err
	}
	meta := &ArtifactMeta{}
	if err := readJSON(filepath.Join(path, "meta.json"), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// LoadLatest loads the newest version of the named artifact. The bool
// result reports whether any version existed.
func (s *ArtifactStore) LoadLatest(name string, model any) (*ArtifactMeta, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: listing artifacts: %v", ErrArtifactIO, err)
	}

	prefix := name + "-v"
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return nil, false, nil
	}
	// Version strings are zero-padded timestamps, so lexicographic order
	// is chronological.
	sort.Strings(versions)

	meta, err := s.Load(filepath.Join(s.dir, versions[len(versions)-1]), model)
	if err != nil {
		return nil, false, err
	}
	return meta, true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", ErrArtifactIO, filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrArtifactIO, path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrArtifactIO, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrArtifactIO, path, err)
	}
	return nil
}
