// Package translate applies a resolved translation strategy to transcript
// segments, degrading per segment instead of failing the batch.
package translate

import (
	"context"

	"subburn/internal/lang"
	"subburn/internal/logging"
	"subburn/internal/model"
	"subburn/internal/subtitle"
)

// Resolver yields a usable strategy for every language pair.
type Resolver interface {
	Resolve(ctx context.Context, source, target string) model.Strategy
}

// Stage translates segments. Output always has the same cardinality and
// ordering as input; a segment whose translation fails keeps its original
// text.
type Stage struct {
	resolver Resolver
	remote   RemoteTranslator
	log      *logging.Logger
}

func NewStage(resolver Resolver, remote RemoteTranslator, log *logging.Logger) *Stage {
	if log == nil {
		log = logging.NewNop()
	}
	return &Stage{resolver: resolver, remote: remote, log: log}
}

// TranslateAll translates every segment from sourceLang to targetLang and
// returns the new segment list plus the number of segments whose translation
// failed and were kept verbatim.
func (s *Stage) TranslateAll(ctx context.Context, segments []subtitle.Segment, sourceLang, targetLang string) ([]subtitle.Segment, int) {
	sourceLang = lang.Normalize(sourceLang)
	targetLang = lang.Normalize(targetLang)

	out := make([]subtitle.Segment, len(segments))
	failures := 0

	for i, seg := range segments {
		out[i] = seg
		if sourceLang == targetLang {
			continue
		}

		strategy := s.resolver.Resolve(ctx, sourceLang, targetLang)
		text, err := s.apply(ctx, strategy, seg.Text, sourceLang, targetLang)
		if err != nil {
			failures++
			s.log.Errorw("segment translation failed, keeping original",
				"index", i, "error", err)
			continue
		}
		out[i].Text = text
	}

	if failures > 0 {
		s.log.Warnw("translation completed with per-segment failures",
			"failed", failures, "total", len(segments))
	}
	return out, failures
}

func (s *Stage) apply(ctx context.Context, strategy model.Strategy, text, sourceLang, targetLang string) (string, error) {
	switch strategy.Kind {
	case model.KindNoop:
		return text, nil
	case model.KindDirect:
		return strategy.Direct.Generate(ctx, text)
	case model.KindPivot:
		pivot, err := strategy.ToEnglish.Generate(ctx, text)
		if err != nil {
			return "", err
		}
		return strategy.FromEnglish.Generate(ctx, pivot)
	case model.KindRemote:
		return s.remoteTranslate(ctx, text, sourceLang, targetLang), nil
	default:
		return text, nil
	}
}

// remoteTranslate is self-healing: a remote-service error yields the input
// text unchanged.
func (s *Stage) remoteTranslate(ctx context.Context, text, sourceLang, targetLang string) string {
	if s.remote == nil {
		s.log.Warnw("no remote translator configured, keeping original text")
		return text
	}
	translated, err := s.remote.TranslateText(ctx, text, sourceLang, targetLang)
	if err != nil {
		s.log.Errorw("remote translation failed, keeping original text", "error", err)
		return text
	}
	return translated
}
