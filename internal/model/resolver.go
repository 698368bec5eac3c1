package model

import (
	"context"
	"fmt"

	"subburn/internal/lang"
	"subburn/internal/logging"
)

// Resolver selects a translation strategy for a language pair. Resolution
// never fails: every pair yields one of noop, direct, pivot, or remote.
type Resolver struct {
	repo  Repository
	cache *Cache
	log   *logging.Logger
}

func NewResolver(repo Repository, cache *Cache, log *logging.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Resolver{repo: repo, cache: cache, log: log}
}

// candidate is one tier of the fallback chain: a strategy kind plus the model
// names that must all exist and load for the tier to succeed.
type candidate struct {
	kind  Kind
	names []string
}

func directCandidates(source, target string) []candidate {
	return []candidate{
		{KindDirect, []string{fmt.Sprintf("Helsinki-NLP/opus-mt-%s-%s", source, target)}},
		{KindDirect, []string{fmt.Sprintf("Helsinki-NLP/opus-mt-tc-big-%s-%s", source, target)}},
		{KindDirect, []string{fmt.Sprintf("Helsinki-NLP/opus-mt-%s-%s-big", source, target)}},
	}
}

func pivotCandidate(source, target string) candidate {
	return candidate{KindPivot, []string{
		fmt.Sprintf("Helsinki-NLP/opus-mt-%s-en", source),
		fmt.Sprintf("Helsinki-NLP/opus-mt-en-%s", target),
	}}
}

// Resolve returns the strategy for translating source into target.
//
// Identical pairs short-circuit to noop and Arabic-to-English goes straight
// to the remote service; neither touches the cache. Everything else resolves
// through the cache, then direct model variants in priority order, then the
// pivot pair, and finally the remote fallback. Probe errors advance the chain
// rather than aborting it.
func (r *Resolver) Resolve(ctx context.Context, source, target string) Strategy {
	source = lang.Normalize(source)
	target = lang.Normalize(target)

	if source == target {
		return Noop()
	}
	// The remote service outperforms the available direct models for ar->en.
	if source == "ar" && target == "en" {
		return Remote()
	}

	if cached, ok := r.cache.Get(source, target); ok {
		r.log.Debugw("strategy cache hit", "source", source, "target", target, "kind", cached.Kind)
		return cached
	}

	candidates := directCandidates(source, target)
	if source != "en" {
		candidates = append(candidates, pivotCandidate(source, target))
	}

	for _, cand := range candidates {
		strategy, ok := r.tryCandidate(ctx, cand)
		if !ok {
			continue
		}
		strategy = r.cache.Put(source, target, strategy)
		r.log.Infow("resolved translation strategy",
			"source", source, "target", target, "kind", strategy.Kind)
		return strategy
	}

	r.log.Infow("no local model resolved, using remote fallback",
		"source", source, "target", target)
	return r.cache.Put(source, target, Remote())
}

func (r *Resolver) tryCandidate(ctx context.Context, cand candidate) (Strategy, bool) {
	for _, name := range cand.names {
		if !r.repo.Exists(ctx, name) {
			r.log.Debugw("model not found", "model", name)
			return Strategy{}, false
		}
	}

	models := make([]TextModel, 0, len(cand.names))
	for _, name := range cand.names {
		m, err := r.repo.Load(ctx, name)
		if err != nil {
			r.log.Warnw("model load failed", "model", name, "error", err)
			return Strategy{}, false
		}
		models = append(models, m)
	}

	switch cand.kind {
	case KindDirect:
		return Strategy{Kind: KindDirect, Direct: models[0]}, true
	case KindPivot:
		return Strategy{Kind: KindPivot, ToEnglish: models[0], FromEnglish: models[1]}, true
	default:
		return Strategy{}, false
	}
}
