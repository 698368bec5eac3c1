package subtitle

import (
	"encoding/json"
	"strings"
	"time"
)

// Segment is one timed span of subtitle text.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Valid reports whether the segment satisfies the pipeline invariants:
// end after start and non-empty trimmed text.
func (s Segment) Valid() bool {
	return s.End > s.Start && strings.TrimSpace(s.Text) != ""
}

// Segments are exchanged with the record store and the progress stream as
// JSON with start/end offsets in seconds.
type segmentJSON struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentJSON{
		Start: s.Start.Seconds(),
		End:   s.End.Seconds(),
		Text:  s.Text,
	})
}

func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw segmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Start = time.Duration(raw.Start * float64(time.Second))
	s.End = time.Duration(raw.End * float64(time.Second))
	s.Text = raw.Text
	return nil
}

// JoinText concatenates segment texts with newlines, the form the progress
// stream and record store use for transcript previews.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, "\n")
}
