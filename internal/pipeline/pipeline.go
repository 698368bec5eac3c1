// Package pipeline orchestrates a full subtitle run: audio extraction,
// language detection, transcription, translation, and the final render.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"subburn/internal/lang"
	"subburn/internal/logging"
	"subburn/internal/store"
	"subburn/internal/subtitle"
	"subburn/internal/transcribe"
	"subburn/internal/video"
)

// Translator converts segment text between languages, reporting how many
// segments kept their original text because translation failed.
type Translator interface {
	TranslateAll(ctx context.Context, segments []subtitle.Segment, sourceLang, targetLang string) ([]subtitle.Segment, int)
}

// Renderer composites subtitles onto a video and returns the output path.
type Renderer interface {
	Render(ctx context.Context, videoPath string, segments []subtitle.Segment, targetLang string, fontSizeOverride int) (string, error)
}

// RecordStore persists run state between stages.
type RecordStore interface {
	UpdateStatus(ctx context.Context, id, status string, progress int, errMsg string) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	UpdateOutput(ctx context.Context, id, outputPath string, segments []subtitle.Segment) error
}

// Request describes one processing run.
type Request struct {
	RecordID   string
	VideoPath  string
	SourceLang string
	TargetLang string
	FontSize   int
	// Segments, when non-empty, are caller-edited subtitles: the run skips
	// straight to rendering them.
	Segments []subtitle.Segment
}

// Pipeline runs subtitle jobs end to end.
type Pipeline struct {
	proc        video.Processor
	transcriber transcribe.Service
	translator  Translator
	renderer    Renderer
	records     RecordStore
	tempDir     string
	log         *logging.Logger
}

func New(proc video.Processor, transcriber transcribe.Service, translator Translator, renderer Renderer, records RecordStore, tempDir string, log *logging.Logger) *Pipeline {
	if log == nil {
		log = logging.NewNop()
	}
	return &Pipeline{
		proc:        proc,
		transcriber: transcriber,
		translator:  translator,
		renderer:    renderer,
		records:     records,
		tempDir:     tempDir,
		log:         log,
	}
}

// Run executes a full processing run, emitting progress events along the way.
// On failure the record is marked failed, a terminal error event is emitted,
// and the error is returned.
func (p *Pipeline) Run(ctx context.Context, req Request, emit Emitter) error {
	if emit == nil {
		emit = func(Event) {}
	}

	sourceLang := lang.Normalize(req.SourceLang)
	targetLang := lang.Normalize(req.TargetLang)

	p.emit(ctx, req.RecordID, emit, Event{Step: StepInitializing, Progress: 0})
	if err := p.records.UpdateStatus(ctx, req.RecordID, store.StatusProcessing, 0, ""); err != nil {
		return p.fail(ctx, req.RecordID, emit, fmt.Errorf("mark processing: %w", err))
	}

	segments := req.Segments
	if len(segments) == 0 {
		var err error
		segments, err = p.produceSegments(ctx, req, sourceLang, targetLang, emit)
		if err != nil {
			return p.fail(ctx, req.RecordID, emit, err)
		}
	} else {
		p.log.Infow("rendering caller-supplied segments", "record", req.RecordID, "count", len(segments))
	}

	p.emit(ctx, req.RecordID, emit, Event{Step: StepGenerateSubs, Progress: 80, Segments: segments})
	p.emit(ctx, req.RecordID, emit, Event{Step: StepAddSubs, Progress: 85})

	outputPath, err := p.renderer.Render(ctx, req.VideoPath, segments, targetLang, req.FontSize)
	if err != nil {
		return p.fail(ctx, req.RecordID, emit, fmt.Errorf("render subtitles: %w", err))
	}

	p.emit(ctx, req.RecordID, emit, Event{Step: StepFinalizing, Progress: 90})
	if err := p.records.UpdateOutput(ctx, req.RecordID, outputPath, segments); err != nil {
		return p.fail(ctx, req.RecordID, emit, fmt.Errorf("record output: %w", err))
	}

	p.emit(ctx, req.RecordID, emit, Event{
		Step:       StepCompleted,
		Progress:   100,
		OutputPath: outputPath,
		Segments:   segments,
	})
	return nil
}

// produceSegments runs the extract, detect, transcribe, and translate stages
// and returns the final subtitle segments.
func (p *Pipeline) produceSegments(ctx context.Context, req Request, sourceLang, targetLang string, emit Emitter) ([]subtitle.Segment, error) {
	p.emit(ctx, req.RecordID, emit, Event{Step: StepExtractAudio, Progress: 10})

	audioPath := filepath.Join(p.tempDir, uuid.NewString()+".wav")
	if err := p.proc.ExtractAudio(ctx, req.VideoPath, audioPath, video.DefaultExtractAudioOptions()); err != nil {
		return nil, fmt.Errorf("extract audio: %w", err)
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			p.log.Warnw("failed to remove temp audio", "path", audioPath, "error", err)
		}
	}()

	if sourceLang == "" || sourceLang == "auto" {
		p.emit(ctx, req.RecordID, emit, Event{Step: StepDetectLang, Progress: 30})
		sourceLang = p.transcriber.DetectLanguage(ctx, audioPath)
	}
	p.emit(ctx, req.RecordID, emit, Event{Step: StepDetectLang, Progress: 35, DetectedLanguage: sourceLang})

	p.emit(ctx, req.RecordID, emit, Event{Step: StepTranscribe, Progress: 40})
	result := p.transcriber.Transcribe(ctx, audioPath, sourceLang, targetLang)
	if len(result.Segments) == 0 {
		return nil, fmt.Errorf("transcription produced no usable segments")
	}
	if result.DetectedLanguage != "" {
		sourceLang = result.DetectedLanguage
	}
	p.emit(ctx, req.RecordID, emit, Event{
		Step:             StepTranscribe,
		Progress:         45,
		DetectedLanguage: sourceLang,
		Transcription:    result.SampleText,
	})

	p.emit(ctx, req.RecordID, emit, Event{Step: StepTranslate, Progress: 60})
	translated, failed := p.translator.TranslateAll(ctx, result.Segments, sourceLang, targetLang)
	if failed > 0 {
		p.log.Warnw("segments kept original text", "record", req.RecordID, "failed", failed)
	}
	p.emit(ctx, req.RecordID, emit, Event{
		Step:        StepTranslate,
		Progress:    65,
		Translation: sampleText(translated),
	})
	return translated, nil
}

func (p *Pipeline) emit(ctx context.Context, recordID string, emit Emitter, ev Event) {
	emit(ev)
	if ev.Progress >= 0 {
		if err := p.records.UpdateProgress(ctx, recordID, ev.Progress); err != nil {
			p.log.Warnw("failed to persist progress", "record", recordID, "error", err)
		}
	}
}

func (p *Pipeline) fail(ctx context.Context, recordID string, emit Emitter, err error) error {
	p.log.Errorw("processing failed", "record", recordID, "error", err)
	// the failure must be persisted even when the run died of cancellation
	ctx = context.WithoutCancel(ctx)
	if storeErr := p.records.UpdateStatus(ctx, recordID, store.StatusFailed, -1, err.Error()); storeErr != nil {
		p.log.Warnw("failed to persist failure", "record", recordID, "error", storeErr)
	}
	emit(Event{Step: StepError, Progress: -1, Error: err.Error()})
	return err
}

func sampleText(segments []subtitle.Segment) string {
	const limit = 3
	n := len(segments)
	if n > limit {
		n = limit
	}
	return subtitle.JoinText(segments[:n])
}
