package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"subburn/internal/store"
	"subburn/internal/subtitle"
	"subburn/internal/transcribe"
	"subburn/internal/video"
)

type fakeProcessor struct {
	extracted  []string
	extractErr error
}

func (f *fakeProcessor) ExtractAudio(_ context.Context, _, outputPath string, _ video.ExtractAudioOptions) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	if err := os.WriteFile(outputPath, []byte("riff"), 0o644); err != nil {
		return err
	}
	f.extracted = append(f.extracted, outputPath)
	return nil
}

func (f *fakeProcessor) Probe(_ context.Context, videoPath string) (*video.Info, error) {
	return &video.Info{Path: videoPath, Width: 1080, Height: 1920, HasAudio: true}, nil
}

type fakeTranscriber struct {
	result   *transcribe.Result
	detected string
	calls    int
	detects  int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _, sourceLang, _ string) *transcribe.Result {
	f.calls++
	if f.result != nil {
		return f.result
	}
	return &transcribe.Result{DetectedLanguage: sourceLang}
}

func (f *fakeTranscriber) DetectLanguage(context.Context, string) string {
	f.detects++
	if f.detected != "" {
		return f.detected
	}
	return "en"
}

type fakeTranslator struct {
	calls int
}

func (f *fakeTranslator) TranslateAll(_ context.Context, segments []subtitle.Segment, _, _ string) ([]subtitle.Segment, int) {
	f.calls++
	out := make([]subtitle.Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		out[i].Text = "T:" + seg.Text
	}
	return out, 0
}

type fakeRenderer struct {
	calls     int
	renderErr error
	gotSegs   []subtitle.Segment
}

func (f *fakeRenderer) Render(_ context.Context, _ string, segments []subtitle.Segment, _ string, _ int) (string, error) {
	f.calls++
	f.gotSegs = segments
	if f.renderErr != nil {
		return "", f.renderErr
	}
	return "/out/final.mp4", nil
}

type fakeRecords struct {
	statuses   []string
	progresses []int
	outputPath string
	outputSegs []subtitle.Segment
	lastError  string
}

func (f *fakeRecords) UpdateStatus(_ context.Context, _, status string, _ int, errMsg string) error {
	f.statuses = append(f.statuses, status)
	f.lastError = errMsg
	return nil
}

func (f *fakeRecords) UpdateProgress(_ context.Context, _ string, progress int) error {
	f.progresses = append(f.progresses, progress)
	return nil
}

func (f *fakeRecords) UpdateOutput(_ context.Context, _, outputPath string, segments []subtitle.Segment) error {
	f.outputPath = outputPath
	f.outputSegs = segments
	return nil
}

func segs(texts ...string) []subtitle.Segment {
	out := make([]subtitle.Segment, len(texts))
	for i, text := range texts {
		out[i] = subtitle.Segment{
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  text,
		}
	}
	return out
}

func newTestPipeline(t *testing.T, proc *fakeProcessor, tr *fakeTranscriber, tl *fakeTranslator, rd *fakeRenderer, rec *fakeRecords) *Pipeline {
	t.Helper()
	return New(proc, tr, tl, rd, rec, t.TempDir(), nil)
}

func TestRunFullPipeline(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{result: &transcribe.Result{
		Segments:         segs("hola", "mundo"),
		DetectedLanguage: "es",
		SampleText:       "hola mundo",
	}}
	tl := &fakeTranslator{}
	rd := &fakeRenderer{}
	rec := &fakeRecords{}
	p := newTestPipeline(t, proc, tr, tl, rd, rec)

	var events []Event
	err := p.Run(context.Background(), Request{
		RecordID:   "r1",
		VideoPath:  "in.mp4",
		SourceLang: "es",
		TargetLang: "en",
	}, func(ev Event) { events = append(events, ev) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	wantProgress := []int{0, 10, 35, 40, 45, 60, 65, 80, 85, 90, 100}
	if len(events) != len(wantProgress) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantProgress), events)
	}
	for i, want := range wantProgress {
		if events[i].Progress != want {
			t.Errorf("event %d progress = %d, want %d (step %s)", i, events[i].Progress, want, events[i].Step)
		}
	}

	last := events[len(events)-1]
	if last.Step != StepCompleted || last.OutputPath != "/out/final.mp4" {
		t.Errorf("final event = %+v", last)
	}
	if len(last.Segments) != 2 || last.Segments[0].Text != "T:hola" {
		t.Errorf("final segments = %+v", last.Segments)
	}
	if tr.detects != 0 {
		t.Errorf("detect called %d times with explicit source language", tr.detects)
	}
	if rec.outputPath != "/out/final.mp4" {
		t.Errorf("store output = %q", rec.outputPath)
	}
	if len(proc.extracted) != 1 {
		t.Fatalf("extractions = %d", len(proc.extracted))
	}
	if _, err := os.Stat(proc.extracted[0]); !os.IsNotExist(err) {
		t.Errorf("temp audio %s not cleaned up", proc.extracted[0])
	}
}

func TestRunAutoDetectsLanguage(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{
		detected: "fr",
		result:   &transcribe.Result{Segments: segs("bonjour"), DetectedLanguage: "fr"},
	}
	rec := &fakeRecords{}
	p := newTestPipeline(t, proc, tr, &fakeTranslator{}, &fakeRenderer{}, rec)

	var detectEvents []Event
	err := p.Run(context.Background(), Request{
		RecordID:   "r2",
		VideoPath:  "in.mp4",
		SourceLang: "auto",
		TargetLang: "en",
	}, func(ev Event) {
		if ev.Step == StepDetectLang {
			detectEvents = append(detectEvents, ev)
		}
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if tr.detects != 1 {
		t.Errorf("detect calls = %d", tr.detects)
	}
	if len(detectEvents) != 2 || detectEvents[1].DetectedLanguage != "fr" {
		t.Errorf("detect events = %+v", detectEvents)
	}
}

func TestRunEditedSegmentsSkipTranscription(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{}
	tl := &fakeTranslator{}
	rd := &fakeRenderer{}
	rec := &fakeRecords{}
	p := newTestPipeline(t, proc, tr, tl, rd, rec)

	edited := segs("fixed line")
	var events []Event
	err := p.Run(context.Background(), Request{
		RecordID:   "r3",
		VideoPath:  "in.mp4",
		SourceLang: "es",
		TargetLang: "en",
		Segments:   edited,
	}, func(ev Event) { events = append(events, ev) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if tr.calls != 0 || tl.calls != 0 || len(proc.extracted) != 0 {
		t.Errorf("stages ran for edited segments: transcribe=%d translate=%d extract=%d", tr.calls, tl.calls, len(proc.extracted))
	}
	if events[1].Progress != 80 {
		t.Errorf("second event progress = %d, want jump to 80", events[1].Progress)
	}
	if rd.calls != 1 || rd.gotSegs[0].Text != "fixed line" {
		t.Errorf("renderer got %+v", rd.gotSegs)
	}
}

func TestRunFailsOnEmptyTranscription(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{result: &transcribe.Result{DetectedLanguage: "es"}}
	rec := &fakeRecords{}
	p := newTestPipeline(t, proc, tr, &fakeTranslator{}, &fakeRenderer{}, rec)

	var last Event
	err := p.Run(context.Background(), Request{
		RecordID:   "r4",
		VideoPath:  "in.mp4",
		SourceLang: "es",
		TargetLang: "en",
	}, func(ev Event) { last = ev })
	if err == nil {
		t.Fatal("expected error")
	}

	if last.Step != StepError || last.Progress != -1 || last.Error == "" {
		t.Errorf("terminal event = %+v", last)
	}
	if len(rec.statuses) == 0 || rec.statuses[len(rec.statuses)-1] != store.StatusFailed {
		t.Errorf("statuses = %v", rec.statuses)
	}
	if rec.lastError == "" {
		t.Error("failure reason not persisted")
	}
	if len(proc.extracted) != 1 {
		t.Fatalf("extractions = %d", len(proc.extracted))
	}
	if _, statErr := os.Stat(proc.extracted[0]); !os.IsNotExist(statErr) {
		t.Errorf("temp audio %s not cleaned up after failure", proc.extracted[0])
	}
}

func TestRunFailsWhenRenderFails(t *testing.T) {
	proc := &fakeProcessor{}
	tr := &fakeTranscriber{result: &transcribe.Result{Segments: segs("hola"), DetectedLanguage: "es"}}
	rd := &fakeRenderer{renderErr: errors.New("ffmpeg exploded")}
	rec := &fakeRecords{}
	p := newTestPipeline(t, proc, tr, &fakeTranslator{}, rd, rec)

	var last Event
	err := p.Run(context.Background(), Request{
		RecordID:   "r5",
		VideoPath:  "in.mp4",
		SourceLang: "es",
		TargetLang: "en",
	}, func(ev Event) { last = ev })
	if err == nil {
		t.Fatal("expected error")
	}
	if last.Progress != -1 {
		t.Errorf("terminal progress = %d", last.Progress)
	}
	if rec.outputPath != "" {
		t.Errorf("output recorded despite failure: %q", rec.outputPath)
	}
}
