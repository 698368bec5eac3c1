package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var srtTimingRe = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

// ParseSRT reads SubRip text and returns its valid segments. Entries with
// bad timing or empty text are skipped rather than failing the whole parse.
func ParseSRT(r io.Reader) ([]Segment, error) {
	scanner := bufio.NewScanner(r)

	var (
		segments  []Segment
		current   *Segment
		textLines []string
		lineNum   int
	)

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			if current.Valid() {
				segments = append(segments, *current)
			}
		}
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if match := srtTimingRe.FindStringSubmatch(line); match != nil {
			start := srtTime(match[1], match[2], match[3], match[4])
			end := srtTime(match[5], match[6], match[7], match[8])
			current = &Segment{Start: start, End: end}
			textLines = nil
			continue
		}

		if current == nil {
			// sequence counter line before the timing line
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
			return nil, fmt.Errorf("line %d: unexpected content outside an entry: %q", lineNum, line)
		}
		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	return segments, nil
}

func srtTime(hours, minutes, seconds, millis string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}
