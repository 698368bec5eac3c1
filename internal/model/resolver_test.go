package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeRepository serves a fixed set of model names and counts probes.
type fakeRepository struct {
	mu       sync.Mutex
	existing map[string]bool
	loadErr  map[string]error
	probes   int
}

func newFakeRepository(names ...string) *fakeRepository {
	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}
	return &fakeRepository{existing: existing, loadErr: map[string]error{}}
}

func (f *fakeRepository) Exists(ctx context.Context, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.existing[name]
}

func (f *fakeRepository) Load(ctx context.Context, name string) (TextModel, error) {
	if err := f.loadErr[name]; err != nil {
		return nil, err
	}
	return fakeModel(name), nil
}

func (f *fakeRepository) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

type fakeModel string

func (m fakeModel) Name() string { return string(m) }

func (m fakeModel) Generate(ctx context.Context, text string) (string, error) {
	return fmt.Sprintf("[%s] %s", m, text), nil
}

func TestResolveSameLanguageIsNoop(t *testing.T) {
	r := NewResolver(newFakeRepository(), NewCache(), nil)
	for _, code := range []string{"en", "es", "xx"} {
		if got := r.Resolve(context.Background(), code, code); got.Kind != KindNoop {
			t.Errorf("Resolve(%s, %s).Kind = %s, want noop", code, code, got.Kind)
		}
	}
	// equality is judged after normalization
	if got := r.Resolve(context.Background(), "EN-us", "english"); got.Kind != KindNoop {
		t.Errorf("normalized same-pair Kind = %s, want noop", got.Kind)
	}
}

func TestResolveArabicToEnglishIsRemote(t *testing.T) {
	// even with a direct model available, policy prefers the remote service
	repo := newFakeRepository("Helsinki-NLP/opus-mt-ar-en")
	r := NewResolver(repo, NewCache(), nil)

	if got := r.Resolve(context.Background(), "ar", "en"); got.Kind != KindRemote {
		t.Errorf("Resolve(ar, en).Kind = %s, want remote", got.Kind)
	}
	if repo.probeCount() != 0 {
		t.Errorf("ar->en should bypass probing, saw %d probes", repo.probeCount())
	}
}

func TestResolveDirectVariantPriority(t *testing.T) {
	repo := newFakeRepository(
		"Helsinki-NLP/opus-mt-tc-big-es-fr",
		"Helsinki-NLP/opus-mt-es-fr-big",
	)
	r := NewResolver(repo, NewCache(), nil)

	got := r.Resolve(context.Background(), "es", "fr")
	if got.Kind != KindDirect {
		t.Fatalf("Kind = %s, want direct", got.Kind)
	}
	if got.Direct.Name() != "Helsinki-NLP/opus-mt-tc-big-es-fr" {
		t.Errorf("loaded %s, want the tc-big variant first", got.Direct.Name())
	}
}

func TestResolvePivot(t *testing.T) {
	repo := newFakeRepository(
		"Helsinki-NLP/opus-mt-ja-en",
		"Helsinki-NLP/opus-mt-en-he",
	)
	r := NewResolver(repo, NewCache(), nil)

	got := r.Resolve(context.Background(), "ja", "he")
	if got.Kind != KindPivot {
		t.Fatalf("Kind = %s, want pivot", got.Kind)
	}
	if got.ToEnglish.Name() != "Helsinki-NLP/opus-mt-ja-en" {
		t.Errorf("ToEnglish = %s", got.ToEnglish.Name())
	}
	if got.FromEnglish.Name() != "Helsinki-NLP/opus-mt-en-he" {
		t.Errorf("FromEnglish = %s", got.FromEnglish.Name())
	}
}

func TestResolveTerminalRemoteFallback(t *testing.T) {
	r := NewResolver(newFakeRepository(), NewCache(), nil)
	if got := r.Resolve(context.Background(), "ja", "he"); got.Kind != KindRemote {
		t.Errorf("Kind = %s, want remote when nothing resolves", got.Kind)
	}
}

func TestResolveLoadFailureAdvancesChain(t *testing.T) {
	repo := newFakeRepository(
		"Helsinki-NLP/opus-mt-es-fr",
		"Helsinki-NLP/opus-mt-es-fr-big",
	)
	repo.loadErr["Helsinki-NLP/opus-mt-es-fr"] = errors.New("checkpoint corrupt")
	r := NewResolver(repo, NewCache(), nil)

	got := r.Resolve(context.Background(), "es", "fr")
	if got.Kind != KindDirect || got.Direct.Name() != "Helsinki-NLP/opus-mt-es-fr-big" {
		t.Errorf("expected fallback to the big variant, got %+v", got)
	}
}

func TestResolveCaches(t *testing.T) {
	repo := newFakeRepository("Helsinki-NLP/opus-mt-es-fr")
	r := NewResolver(repo, NewCache(), nil)
	ctx := context.Background()

	first := r.Resolve(ctx, "es", "fr")
	probesAfterFirst := repo.probeCount()
	second := r.Resolve(ctx, "es", "fr")

	if repo.probeCount() != probesAfterFirst {
		t.Error("second resolve should hit the cache, not probe again")
	}
	if first.Kind != second.Kind || first.Direct.Name() != second.Direct.Name() {
		t.Error("cache returned a different strategy")
	}

	// the terminal remote fallback is cached too
	r.Resolve(ctx, "ja", "he")
	probes := repo.probeCount()
	r.Resolve(ctx, "ja", "he")
	if repo.probeCount() != probes {
		t.Error("remote fallback result was not cached")
	}
}

func TestResolveConcurrent(t *testing.T) {
	repo := newFakeRepository("Helsinki-NLP/opus-mt-es-fr")
	cache := NewCache()
	r := NewResolver(repo, cache, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Resolve(context.Background(), "es", "fr"); got.Kind != KindDirect {
				t.Errorf("concurrent resolve Kind = %s", got.Kind)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("cache has %d entries, want 1", cache.Len())
	}
}
