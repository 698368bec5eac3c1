// Package render burns translated subtitle segments into the video via the
// external media renderer, with a degraded fallback render path.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"subburn/internal/lang"
	"subburn/internal/logging"
	"subburn/internal/subtitle"
	"subburn/internal/video"
)

// Renderer composites subtitles onto video files.
type Renderer struct {
	proc      video.Processor
	outputDir string
	fontsDir  string
	log       *logging.Logger
}

func NewRenderer(proc video.Processor, outputDir, fontsDir string, log *logging.Logger) *Renderer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Renderer{proc: proc, outputDir: outputDir, fontsDir: fontsDir, log: log}
}

// Render serializes segments to a transient SRT file and invokes the
// renderer to produce a new video with the subtitles composited in. The SRT
// file is removed on every exit path. If the styled render fails, one
// degraded render with minimal default styling is attempted before
// surfacing failure.
func (r *Renderer) Render(ctx context.Context, videoPath string, segments []subtitle.Segment, targetLang string, fontSizeOverride int) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("no subtitles to render")
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	info, err := r.proc.Probe(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to probe video: %w", err)
	}

	layout := subtitle.ComputeLayout(info.Width, info.Height, fontSizeOverride)
	wrapped := make([]subtitle.Segment, len(segments))
	for i, seg := range segments {
		wrapped[i] = seg
		wrapped[i].Text = wrapForScript(seg.Text, targetLang, layout)
	}

	srtPath := filepath.Join(r.outputDir, uuid.NewString()+".srt")
	if err := subtitle.WriteSRT(wrapped, srtPath); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}
	defer func() {
		if err := os.Remove(srtPath); err != nil && !os.IsNotExist(err) {
			r.log.Warnw("failed to remove subtitle file", "path", srtPath, "error", err)
		}
	}()

	outputPath := filepath.Join(r.outputDir, uuid.NewString()+".mp4")
	fontName := r.fontFor(targetLang)
	style := buildStyle(layout, fontName, info.Width, info.Height)

	r.log.Infow("rendering subtitles",
		"video", videoPath,
		"output", outputPath,
		"dimensions", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"vertical", layout.Vertical,
		"font", fontName,
	)

	if err := r.renderStyled(videoPath, srtPath, outputPath, style, layout, info); err != nil {
		r.log.Errorw("styled render failed, attempting fallback", "error", err)
		if fbErr := r.renderFallback(videoPath, srtPath, outputPath); fbErr != nil {
			return "", fmt.Errorf("render failed: %w (fallback: %v)", err, fbErr)
		}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("output video not produced: %s", outputPath)
	}
	return outputPath, nil
}

func (r *Renderer) renderStyled(videoPath, srtPath, outputPath, style string, layout subtitle.Layout, info *video.Info) error {
	if err := buildRenderStream(videoPath, srtPath, outputPath, style, layout, info).Run(); err != nil {
		return fmt.Errorf("ffmpeg render failed: %w", err)
	}
	return nil
}

// buildRenderStream assembles the styled burn-in filter graph. Vertical
// footage is letterboxed first: shrunk into a 92%-height band, then padded
// back to full frame so the safe zone survives the overlay.
func buildRenderStream(videoPath, srtPath, outputPath, style string, layout subtitle.Layout, info *video.Info) *ffmpeg.Stream {
	input := ffmpeg.Input(videoPath)

	stream := input
	if layout.Vertical {
		scaled := input.Filter("scale", ffmpeg.Args{
			"-2",
			strconv.Itoa(int(float64(info.Height) * 0.92)),
		})
		stream = scaled.Filter("pad", ffmpeg.Args{
			strconv.Itoa(info.Width),
			strconv.Itoa(info.Height),
			"(ow-iw)/2",
			"0",
		})
	}

	subtitled := stream.Filter("subtitles", ffmpeg.Args{srtPath}, ffmpeg.KwArgs{
		"force_style":   style,
		"charenc":       "UTF-8",
		"original_size": fmt.Sprintf("%dx%d", info.Width, info.Height),
	})

	outStreams := []*ffmpeg.Stream{subtitled}
	if info.HasAudio {
		outStreams = append(outStreams, input.Audio())
	}

	return ffmpeg.Output(outStreams, outputPath, ffmpeg.KwArgs{
		"vcodec":   "libx264",
		"crf":      18,
		"preset":   "slow",
		"movflags": "+faststart",
		"acodec":   "aac",
		"pix_fmt":  "yuv420p",
	}).OverWriteOutput()
}

// renderFallback burns the subtitles with no computed styling and no
// letterbox, the last resort before giving up.
func (r *Renderer) renderFallback(videoPath, srtPath, outputPath string) error {
	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{"vf": "subtitles=" + srtPath}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("fallback render failed: %w", err)
	}
	return nil
}

// wrapForScript pre-wraps one segment for the target script. CJK text has
// no word boundaries and wraps at the rune midpoint; RTL text is left to
// the renderer's own wrapping, which keeps bidi runs intact.
func wrapForScript(text, targetLang string, layout subtitle.Layout) string {
	switch {
	case lang.IsCJK(targetLang):
		return subtitle.WrapRunes(text, layout)
	case lang.IsRTL(targetLang):
		return strings.TrimSpace(text)
	default:
		return subtitle.WrapText(text, layout)
	}
}

// fontFor maps the target language's script to a typeface resource, falling
// back to the universal default face when the dedicated file is missing.
func (r *Renderer) fontFor(targetLang string) string {
	file := lang.FontFile(targetLang)
	if r.fontsDir != "" {
		path := filepath.Join(r.fontsDir, file)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		def := filepath.Join(r.fontsDir, lang.DefaultFontFile)
		if _, err := os.Stat(def); err == nil {
			r.log.Warnw("typeface missing, using default", "wanted", file)
			return def
		}
	}
	// no provisioned font dir: hand the renderer a family name
	return strings.TrimSuffix(file, filepath.Ext(file))
}
