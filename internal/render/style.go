package render

import (
	"fmt"
	"strings"

	"subburn/internal/subtitle"
)

// buildStyle assembles the ASS force_style parameters for the subtitles
// filter from the computed layout.
func buildStyle(layout subtitle.Layout, fontName string, width, height int) string {
	style := []string{
		fmt.Sprintf("FontName=%s", fontName),
		fmt.Sprintf("FontSize=%d", layout.FontSize),
		"PrimaryColour=&H00FFFFFF",
		"BackColour=&H80000000",
		"BorderStyle=4",
		"Outline=0",
		"Shadow=0",
		fmt.Sprintf("MarginL=%d", layout.MarginH),
		fmt.Sprintf("MarginR=%d", layout.MarginH),
		fmt.Sprintf("MarginV=%d", layout.MarginV),
		"Alignment=2",
		"WrapStyle=1",
		fmt.Sprintf("PlayResX=%d", width),
		fmt.Sprintf("PlayResY=%d", height),
		fmt.Sprintf("LineSpacing=%d", layout.LineHeight-layout.FontSize),
	}
	return strings.Join(style, ",")
}
