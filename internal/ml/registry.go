package ml

import (
	"sync"
	"sync/atomic"
)

// ModelSet is the immutable pair of artifacts the scoring path reads.
// Classifier may be nil before the first training run; the embedder is
// always usable (a fresh one falls back to plain hashed features).
type ModelSet struct {
	Embedder       *Embedder
	Classifier     *Classifier
	EmbedderMeta   *ArtifactMeta
	ClassifierMeta *ArtifactMeta
}

// Registry hands out the currently published ModelSet. Publish swaps the
// whole set atomically, so an in-flight scoring call keeps the consistent
// set it started with while the next call sees the new one. There is no
// in-place mutation of a published set.
type Registry struct {
	store    *ArtifactStore
	current  atomic.Pointer[ModelSet]
	initOnce sync.Once
}

func NewRegistry(store *ArtifactStore) *Registry {
	return &Registry{store: store}
}

// Current returns the active model set, loading the latest persisted
// artifacts on first use. Never returns nil.
func (r *Registry) Current() *ModelSet {
	r.initOnce.Do(func() {
		if r.current.Load() == nil {
			set, err := r.loadFromStore()
			if err != nil || set == nil {
				set = &ModelSet{Embedder: NewEmbedder(DefaultDim)}
			}
			r.current.CompareAndSwap(nil, set)
		}
	})
	return r.current.Load()
}

// Publish makes set the one visible to subsequent scoring calls.
func (r *Registry) Publish(set *ModelSet) {
	if set == nil || set.Embedder == nil {
		return
	}
	r.current.Store(set)
}

func (r *Registry) loadFromStore() (*ModelSet, error) {
	if r.store == nil {
		return nil, nil
	}

	set := &ModelSet{}

	embedder := &Embedder{}
	meta, ok, err := r.store.LoadLatest(ArtifactSimilarity, embedder)
	if err != nil {
		return nil, err
	}
	if ok {
		set.Embedder = embedder
		set.EmbedderMeta = meta
	} else {
		set.Embedder = NewEmbedder(DefaultDim)
	}

	classifier := &Classifier{}
	meta, ok, err = r.store.LoadLatest(ArtifactClassifier, classifier)
	if err != nil {
		return nil, err
	}
	if ok {
		set.Classifier = classifier
		set.ClassifierMeta = meta
	}

	return set, nil
}
