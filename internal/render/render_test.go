package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subburn/internal/subtitle"
	"subburn/internal/video"
)

func TestBuildStyle(t *testing.T) {
	layout := subtitle.Layout{
		FontSize:        44,
		MaxLines:        2,
		MarginV:         64,
		LineHeight:      57,
		MarginH:         230,
		MaxCharsPerLine: 50,
	}
	style := buildStyle(layout, "NotoSans-Regular", 1920, 1080)

	for _, want := range []string{
		"FontName=NotoSans-Regular",
		"FontSize=44",
		"PrimaryColour=&H00FFFFFF",
		"BackColour=&H80000000",
		"BorderStyle=4",
		"MarginL=230",
		"MarginR=230",
		"MarginV=64",
		"Alignment=2",
		"PlayResX=1920",
		"PlayResY=1080",
		"LineSpacing=13",
	} {
		if !strings.Contains(style, want) {
			t.Errorf("style missing %q:\n%s", want, style)
		}
	}
}

func TestBuildRenderStreamVerticalLetterbox(t *testing.T) {
	info := &video.Info{Width: 1080, Height: 1920, HasAudio: true}
	layout := subtitle.ComputeLayout(info.Width, info.Height, 0)
	if !layout.Vertical {
		t.Fatal("1080x1920 not classified vertical")
	}

	args := strings.Join(buildRenderStream("in.mp4", "subs.srt", "out.mp4", "FontSize=20", layout, info).GetArgs(), " ")

	if !strings.Contains(args, "scale=-2:1766") {
		t.Errorf("missing 92%%-height scale:\n%s", args)
	}
	if !strings.Contains(args, "pad=1080:1920:(ow-iw)/2:0") {
		t.Errorf("missing full-frame pad:\n%s", args)
	}
	if !strings.Contains(args, "subtitles=") || !strings.Contains(args, "force_style=FontSize=20") {
		t.Errorf("missing subtitles filter:\n%s", args)
	}
	for _, want := range []string{"libx264", "18", "slow", "+faststart", "aac", "yuv420p"} {
		if !strings.Contains(args, want) {
			t.Errorf("missing output arg %q:\n%s", want, args)
		}
	}
}

func TestBuildRenderStreamStandardSkipsLetterbox(t *testing.T) {
	info := &video.Info{Width: 1920, Height: 1080, HasAudio: true}
	layout := subtitle.ComputeLayout(info.Width, info.Height, 0)
	if layout.Vertical {
		t.Fatal("1920x1080 classified vertical")
	}

	args := strings.Join(buildRenderStream("in.mp4", "subs.srt", "out.mp4", "FontSize=44", layout, info).GetArgs(), " ")

	if strings.Contains(args, "scale=") || strings.Contains(args, "pad=") {
		t.Errorf("letterbox filters present for standard footage:\n%s", args)
	}
	if !strings.Contains(args, "subtitles=") {
		t.Errorf("missing subtitles filter:\n%s", args)
	}
}

func TestRenderEmptySegments(t *testing.T) {
	r := NewRenderer(nil, t.TempDir(), "", nil)
	if _, err := r.Render(context.Background(), "in.mp4", nil, "en", 0); err == nil {
		t.Fatal("expected error for empty segments")
	}
}

func TestWrapForScript(t *testing.T) {
	layout := subtitle.Layout{MaxCharsPerLine: 8, MaxLines: 2}

	if got := wrapForScript("one two three four", "en", layout); !strings.Contains(got, "\n") {
		t.Errorf("latin text not word-wrapped: %q", got)
	}
	if got := wrapForScript("これは長い日本語の字幕です", "ja", layout); !strings.Contains(got, "\n") {
		t.Errorf("cjk text not rune-wrapped: %q", got)
	}
	arabic := "هذا نص عربي طويل جدا للسطر الواحد"
	if got := wrapForScript(arabic, "ar", layout); got != arabic {
		t.Errorf("rtl text was split: %q", got)
	}
}

func TestFontForFallsBackToFamilyName(t *testing.T) {
	r := NewRenderer(nil, "", "", nil)
	if got := r.fontFor("en"); got != "NotoSans-Regular" {
		t.Errorf("fontFor(en) = %q, want family name", got)
	}
	if got := r.fontFor("ar"); got != "NotoSansArabic-Regular" {
		t.Errorf("fontFor(ar) = %q", got)
	}
}

func TestFontForPrefersProvisionedFile(t *testing.T) {
	dir := t.TempDir()
	arabic := filepath.Join(dir, "NotoSansArabic-Regular.ttf")
	if err := os.WriteFile(arabic, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(nil, "", dir, nil)

	if got := r.fontFor("ar"); got != arabic {
		t.Errorf("fontFor(ar) = %q, want %q", got, arabic)
	}
	// missing face with no default present degrades to family name
	if got := r.fontFor("zh"); got != "NotoSansSC-Regular" {
		t.Errorf("fontFor(zh) = %q", got)
	}
}

func TestFontForDefaultFileFallback(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "NotoSans-Regular.ttf")
	if err := os.WriteFile(def, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(nil, "", dir, nil)

	if got := r.fontFor("ja"); got != def {
		t.Errorf("fontFor(ja) = %q, want default face %q", got, def)
	}
}
