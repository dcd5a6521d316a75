package ml

import (
	"errors"
	"reflect"
	"testing"
)

func TestArtifactRoundTrip(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	original := NewEmbedder(32)
	for i := range original.Weights {
		original.Weights[i] = 1 + float64(i)*0.01
	}

	path, err := store.Save(ArtifactSimilarity, original, ArtifactMeta{Metric: 0.87})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := &Embedder{}
	meta, err := store.Load(path, loaded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if meta.Name != ArtifactSimilarity || meta.Metric != 0.87 {
		t.Fatalf("meta = %+v", meta)
	}
	if !reflect.DeepEqual(original.Weights, loaded.Weights) || original.Dim != loaded.Dim {
		t.Fatal("loaded embedder differs from saved one")
	}

	// Identical inputs must produce identical predictions after reload.
	a := "go engineer with postgres experience"
	b := "hiring a go backend engineer"
	if original.Similarity(a, b) != loaded.Similarity(a, b) {
		t.Fatal("reloaded model predicts differently")
	}
}

func TestLoadLatestPicksNewestVersion(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	first := NewEmbedder(8)
	if _, err := store.Save(ArtifactSimilarity, first, ArtifactMeta{Version: "20250101T000000.000000000"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := NewEmbedder(8)
	second.Weights[0] = 2.5
	if _, err := store.Save(ArtifactSimilarity, second, ArtifactMeta{Version: "20250102T000000.000000000"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := &Embedder{}
	meta, ok, err := store.LoadLatest(ArtifactSimilarity, loaded)
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if !ok {
		t.Fatal("LoadLatest found nothing")
	}
	if meta.Version != "20250102T000000.000000000" {
		t.Fatalf("loaded version %q, want the newer one", meta.Version)
	}
	if loaded.Weights[0] != 2.5 {
		t.Fatal("loaded the older artifact's weights")
	}
}

func TestLoadLatestMissing(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	_, ok, err := store.LoadLatest(ArtifactClassifier, &Classifier{})
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if ok {
		t.Fatal("LoadLatest reported an artifact in an empty store")
	}
}

func TestLoadMissingPathWrapsArtifactIO(t *testing.T) {
	store := NewArtifactStore(t.TempDir())

	if _, err := store.Load("/nonexistent/artifact", &Embedder{}); !errors.Is(err, ErrArtifactIO) {
		t.Fatalf("err = %v, want ErrArtifactIO", err)
	}
}

func TestRegistryDefaultAndPublish(t *testing.T) {
	registry := NewRegistry(NewArtifactStore(t.TempDir()))

	set := registry.Current()
	if set == nil || set.Embedder == nil {
		t.Fatal("registry returned no usable default model set")
	}
	if set.Classifier != nil {
		t.Fatal("empty store produced a classifier")
	}

	trained := NewEmbedder(DefaultDim)
	trained.Weights[3] = 1.7
	registry.Publish(&ModelSet{Embedder: trained})

	if got := registry.Current(); got.Embedder.Weights[3] != 1.7 {
		t.Fatal("published model set not visible")
	}

	// A nil or embedder-less set must never replace a good one.
	registry.Publish(nil)
	registry.Publish(&ModelSet{})
	if got := registry.Current(); got.Embedder.Weights[3] != 1.7 {
		t.Fatal("invalid publish clobbered the active set")
	}
}

func TestRegistryLoadsPersistedArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir)

	trained := NewEmbedder(16)
	trained.Weights[0] = 3.0
	if _, err := store.Save(ArtifactSimilarity, trained, ArtifactMeta{Metric: 0.9}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	registry := NewRegistry(NewArtifactStore(dir))
	set := registry.Current()
	if set.Embedder.Weights[0] != 3.0 {
		t.Fatal("registry did not load the persisted embedder")
	}
	if set.EmbedderMeta == nil || set.EmbedderMeta.Metric != 0.9 {
		t.Fatalf("embedder meta = %+v", set.EmbedderMeta)
	}
}
