package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"subburn/internal/lang"
	"subburn/internal/logging"
	"subburn/internal/subtitle"
)

const defaultModel = "whisper-1"

// WhisperTranscriber implements Service against a Whisper-style audio API.
type WhisperTranscriber struct {
	client openai.Client
	model  string
	log    *logging.Logger
}

// segment from the verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewWhisperTranscriber(apiKey, model string, log *logging.Logger, reqOpts ...option.RequestOption) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = logging.NewNop()
	}

	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, reqOpts...)
	return &WhisperTranscriber{
		client: openai.NewClient(opts...),
		model:  model,
		log:    log,
	}, nil
}

// Transcribe runs the speech service against the audio file. When the target
// is English and the source is not, the service's translate-to-English mode
// is attempted first; any failure there falls back to plain transcription
// with the source-language hint. Service failures are absorbed: the result
// carries zero segments and echoes the source language.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath, sourceLang, targetLang string) *Result {
	sourceLang = lang.Normalize(sourceLang)
	targetLang = lang.Normalize(targetLang)

	var (
		raw      string
		err      error
		language = sourceLang
	)

	if targetLang == "en" && sourceLang != "en" {
		raw, err = t.callTranslation(ctx, audioPath)
		if err != nil {
			t.log.Warnw("translate-to-English call failed, falling back to transcription",
				"error", err)
			raw, err = t.callTranscription(ctx, audioPath, sourceLang)
		} else {
			language = "en"
		}
	} else {
		raw, err = t.callTranscription(ctx, audioPath, sourceLang)
	}

	if err != nil {
		t.log.Errorw("transcription failed", "audio", audioPath, "error", err)
		return &Result{Segments: []subtitle.Segment{}, DetectedLanguage: sourceLang}
	}

	return t.buildResult(raw, language, sourceLang)
}

// DetectLanguage asks the speech service for the audio's language, defaulting
// to English when the call fails.
func (t *WhisperTranscriber) DetectLanguage(ctx context.Context, audioPath string) string {
	raw, err := t.callTranscription(ctx, audioPath, "")
	if err != nil {
		t.log.Warnw("language detection failed, defaulting to en", "error", err)
		return "en"
	}

	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil || resp.Language == "" {
		return "en"
	}
	return lang.Normalize(resp.Language)
}

func (t *WhisperTranscriber) callTranslation(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	resp, err := t.client.Audio.Translations.New(ctx, openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", fmt.Errorf("translation call: %w", err)
	}
	return resp.RawJSON(), nil
}

func (t *WhisperTranscriber) callTranscription(ctx context.Context, audioPath, sourceLang string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if sourceLang != "" {
		params.Language = openai.String(sourceLang)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription call: %w", err)
	}
	return resp.RawJSON(), nil
}

func (t *WhisperTranscriber) buildResult(rawJSON, language, sourceLang string) *Result {
	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		t.log.Errorw("failed to parse verbose_json response", "error", err)
		return &Result{Segments: []subtitle.Segment{}, DetectedLanguage: sourceLang}
	}

	if resp.Language != "" {
		language = lang.Normalize(resp.Language)
	}

	segments, dropped := filterSegments(resp.Segments)
	if dropped > 0 {
		t.log.Warnw("dropped malformed transcription segments",
			"dropped", dropped, "kept", len(segments))
	}

	sample := ""
	if len(segments) > 0 {
		sample = segments[0].Text
	}

	return &Result{
		Segments:         segments,
		DetectedLanguage: language,
		SampleText:       sample,
		Dropped:          dropped,
	}
}

// filterSegments keeps raw segments with positive duration and non-empty
// trimmed text; everything else is counted and dropped, never fatal.
func filterSegments(raw []whisperSegment) ([]subtitle.Segment, int) {
	segments := make([]subtitle.Segment, 0, len(raw))
	dropped := 0
	for _, seg := range raw {
		text := strings.TrimSpace(seg.Text)
		if seg.End <= seg.Start || text == "" {
			dropped++
			continue
		}
		segments = append(segments, subtitle.Segment{
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  text,
		})
	}
	return segments, dropped
}
