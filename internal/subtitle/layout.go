package subtitle

// Layout holds the computed display parameters for burned-in subtitles.
type Layout struct {
	FontSize        int
	MaxLines        int
	MarginV         int
	LineHeight      int
	MarginH         int
	MaxCharsPerLine int
	Vertical        bool
}

// Videos narrower than this width/height ratio are treated as vertical
// (phone-shot) footage and get the single-line layout.
const verticalAspectRatio = 0.6

// DefaultLayout is the safe fallback used when geometry is unusable.
func DefaultLayout() Layout {
	return Layout{
		FontSize:        24,
		MaxLines:        2,
		MarginV:         20,
		LineHeight:      28,
		MarginH:         50,
		MaxCharsPerLine: 40,
	}
}

// ComputeLayout derives font size, margins, line budget, and wrap width from
// the video geometry. userFontSize <= 0 means no override. The function never
// fails: unusable input yields DefaultLayout.
func ComputeLayout(width, height, userFontSize int) Layout {
	if width <= 0 || height <= 0 {
		return DefaultLayout()
	}

	aspect := float64(width) / float64(height)
	if aspect < verticalAspectRatio {
		return verticalLayout(width, height, userFontSize)
	}
	return standardLayout(width, height, userFontSize)
}

func verticalLayout(width, height, userFontSize int) Layout {
	var size float64
	if userFontSize > 0 {
		size = clamp(float64(userFontSize), 12, 20)
	} else {
		size = clamp(float64(min(width, height))*0.038*0.92, 14, 20)
	}

	lineSpacing := int(size * 0.25)

	return Layout{
		FontSize:        int(size),
		MaxLines:        1,
		MarginV:         int(float64(height) * 0.08),
		LineHeight:      int(size) + lineSpacing,
		MarginH:         int(maxf(float64(width)*0.06, 15)),
		MaxCharsPerLine: 42,
		Vertical:        true,
	}
}

func standardLayout(width, height, userFontSize int) Layout {
	var size float64
	if userFontSize > 0 {
		size = clamp(float64(userFontSize), 22, 44)
	} else {
		size = clamp(float64(height)*0.042, 22, 44)
	}

	const safeZone = 0.82
	charsPerLine := int(clamp(float64(width)*safeZone/(size*0.6), 20, 50))
	lineSpacing := int(size * 0.3)

	return Layout{
		FontSize:        int(size),
		MaxLines:        2,
		MarginV:         int(float64(height) * 0.06),
		LineHeight:      int(size) + lineSpacing,
		MarginH:         int(maxf(float64(width)*0.12, 50)),
		MaxCharsPerLine: charsPerLine,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
