package pipeline

import "subburn/internal/subtitle"

// Processing step names reported to clients.
const (
	StepInitializing = "Initializing"
	StepExtractAudio = "Extracting audio"
	StepDetectLang   = "Detecting language"
	StepTranscribe   = "Transcribing"
	StepTranslate    = "Translating"
	StepGenerateSubs = "Generating subtitles"
	StepAddSubs      = "Adding subtitles"
	StepFinalizing   = "Finalizing"
	StepCompleted    = "Completed"
	StepError        = "Error"
)

// Event is a progress report emitted during a processing run. Progress is
// 0..100, or -1 when the run has failed.
type Event struct {
	Step             string             `json:"step"`
	Progress         int                `json:"progress"`
	DetectedLanguage string             `json:"detected_language,omitempty"`
	Transcription    string             `json:"transcription,omitempty"`
	Translation      string             `json:"translation,omitempty"`
	OutputPath       string             `json:"output_path,omitempty"`
	Segments         []subtitle.Segment `json:"segments,omitempty"`
	Error            string             `json:"error,omitempty"`
}

// Emitter receives progress events. Implementations must not block for long;
// the pipeline calls it inline between stages.
type Emitter func(Event)
