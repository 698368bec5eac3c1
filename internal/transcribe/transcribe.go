// Package transcribe turns extracted audio into timed, validated transcript
// segments via the external speech service.
package transcribe

import (
	"context"

	"subburn/internal/subtitle"
)

// Result is the normalized transcription outcome.
type Result struct {
	Segments         []subtitle.Segment
	DetectedLanguage string
	SampleText       string
	Dropped          int // malformed raw segments that were filtered out
}

// Service is the transcription stage contract. Implementations never fail:
// a speech-service error yields an empty-segments Result with
// DetectedLanguage set to the source hint, and the orchestrator decides
// whether empty output is fatal.
type Service interface {
	Transcribe(ctx context.Context, audioPath, sourceLang, targetLang string) *Result
	DetectLanguage(ctx context.Context, audioPath string) string
}
