// Package model resolves translation strategies for language pairs: a direct
// model, a pivot chain through English, or the remote fallback service.
package model

import "context"

// Kind tags the strategy variants.
type Kind string

const (
	// KindNoop means source and target match; translation is skipped.
	KindNoop Kind = "noop"
	// KindDirect is a single model handling source->target.
	KindDirect Kind = "direct"
	// KindPivot chains source->English and English->target models.
	KindPivot Kind = "pivot"
	// KindRemote delegates to the remote general-purpose text service.
	KindRemote Kind = "remote"
)

// TextModel is a loaded translation model. Loading yields a reusable
// model+tokenizer pair behind this interface; Generate runs one text through
// it.
type TextModel interface {
	Name() string
	Generate(ctx context.Context, text string) (string, error)
}

// Strategy is the tagged variant the resolver yields. Exactly the fields for
// its Kind are set.
type Strategy struct {
	Kind        Kind
	Direct      TextModel // KindDirect
	ToEnglish   TextModel // KindPivot
	FromEnglish TextModel // KindPivot
}

// Noop returns the strategy for identical language pairs.
func Noop() Strategy { return Strategy{Kind: KindNoop} }

// Remote returns the sentinel meaning "use the remote fallback directly".
func Remote() Strategy { return Strategy{Kind: KindRemote} }
