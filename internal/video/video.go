// Package video wraps the external media transcoding tool for audio
// extraction and stream probing.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Info describes the probed video streams.
type Info struct {
	Path     string
	Duration time.Duration
	Width    int
	Height   int
	Codec    string
	HasAudio bool
}

// Processor performs media operations on video files.
type Processor interface {
	// ExtractAudio writes the video's audio track to outputPath.
	ExtractAudio(ctx context.Context, videoPath, outputPath string, opts ExtractAudioOptions) error

	// Probe inspects the video and returns stream information.
	Probe(ctx context.Context, videoPath string) (*Info, error)
}

// ExtractAudioOptions holds options for audio extraction.
type ExtractAudioOptions struct {
	Format     string // wav, mp3, aac, flac
	SampleRate int
	Channels   int // 1 = mono, 2 = stereo
}

// DefaultExtractAudioOptions is the mono 16kHz WAV profile the speech
// service expects.
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// FFmpegProcessor implements Processor with ffmpeg.
type FFmpegProcessor struct{}

func NewProcessor() *FFmpegProcessor {
	return &FFmpegProcessor{}
}

func (p *FFmpegProcessor) ExtractAudio(ctx context.Context, videoPath, outputPath string, opts ExtractAudioOptions) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}
	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		WithErrorOutput(os.Stderr).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}

// probe JSON shapes from ffprobe
type probeStream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *FFmpegProcessor) Probe(ctx context.Context, videoPath string) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	raw, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(videoPath, raw)
}

func parseProbe(videoPath, raw string) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}

	info := &Info{Path: videoPath}
	for _, stream := range out.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			if info.Width == 0 {
				info.Width = stream.Width
				info.Height = stream.Height
				info.Codec = stream.CodecName
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("no video stream found in %s", videoPath)
	}

	if secs, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	return info, nil
}
