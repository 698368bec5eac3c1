package subtitle

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestParseSRT(t *testing.T) {
	input := "1\n" +
		"00:00:01,500 --> 00:00:03,000\n" +
		"Hello world\n" +
		"\n" +
		"2\n" +
		"00:00:04,000 --> 00:00:06,250\n" +
		"Second line\n" +
		"with a wrap\n" +
		"\n"

	segments, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("len = %d", len(segments))
	}
	if segments[0].Start != 1500*time.Millisecond || segments[0].End != 3*time.Second {
		t.Errorf("timing = %v..%v", segments[0].Start, segments[0].End)
	}
	if segments[1].Text != "Second line\nwith a wrap" {
		t.Errorf("text = %q", segments[1].Text)
	}
}

func TestParseSRTSkipsInvalidEntries(t *testing.T) {
	input := "1\n" +
		"00:00:05,000 --> 00:00:02,000\n" +
		"backwards timing\n" +
		"\n" +
		"2\n" +
		"00:00:06,000 --> 00:00:07,000\n" +
		"kept\n"

	segments, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "kept" {
		t.Errorf("segments = %+v", segments)
	}
}

func TestParseSRTHandlesBOMAndMissingTrailingBlank(t *testing.T) {
	input := "\uFEFF1\n00:00:00,000 --> 00:00:01,000\nfirst\n"
	segments, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(segments) != 1 || segments[0].Text != "first" {
		t.Errorf("segments = %+v", segments)
	}
}

func TestParseSRTRejectsGarbage(t *testing.T) {
	if _, err := ParseSRT(strings.NewReader("this is not subrip\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	original := []Segment{
		{Start: 0, End: 1200 * time.Millisecond, Text: "one"},
		{Start: 2 * time.Second, End: 3 * time.Second, Text: "two"},
	}
	path := t.TempDir() + "/round.srt"
	if err := WriteSRT(original, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	segments, err := ParseSRT(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 2 || segments[1].Text != "two" || segments[0].End != 1200*time.Millisecond {
		t.Errorf("round trip mismatch: %+v", segments)
	}
}
