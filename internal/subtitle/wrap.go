package subtitle

import (
	"strings"
	"unicode/utf8"
)

// WrapText pre-wraps segment text to the layout's line budget before SRT
// serialization, splitting at the word boundary closest to the midpoint.
// Single-line layouts pass text through unchanged and leave wrapping to the
// renderer's wrap style.
func WrapText(text string, layout Layout) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	if runeCount <= layout.MaxCharsPerLine || layout.MaxLines <= 1 {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the split point closest to the middle
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

// WrapRunes splits text at the rune midpoint for scripts without word
// boundaries. Text that fits, or a single-line layout, passes through.
func WrapRunes(text string, layout Layout) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)

	if len(runes) <= layout.MaxCharsPerLine || layout.MaxLines <= 1 {
		return text
	}

	middle := len(runes) / 2
	return string(runes[:middle]) + "\n" + strings.TrimSpace(string(runes[middle:]))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
