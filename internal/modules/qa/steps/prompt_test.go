package steps

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
)

func testSegments(n int) []RetrievedSegment {
	segs := make([]RetrievedSegment, 0, n)
	for i := 0; i < n; i++ {
		segs = append(segs, RetrievedSegment{
			ChunkID:        uuid.New(),
			RecordingID:    uuid.New(),
			StartSec:       float64(100 * i),
			EndSec:         float64(100*i + 90),
			Text:           "Segment text number " + formatInt(i+1) + " talking about pricing and customers.",
			Similarity:     0.9 - float64(i)*0.1,
			RecordingTitle: "Episode " + formatInt(i+1),
			MediaURL:       "https://cdn.example.com/ep" + formatInt(i+1) + ".mp3",
		})
	}
	return segs
}

func TestBuildEvidenceBlockIndexesAndTimes(t *testing.T) {
	segs := testSegments(3)
	block, index := BuildEvidenceBlock(segs, 900)

	if len(index) != 3 {
		t.Fatalf("index table has %d entries, want 3", len(index))
	}
	for i := 1; i <= 3; i++ {
		if index[i].ChunkID != segs[i-1].ChunkID {
			t.Fatalf("index %d maps to wrong segment", i)
		}
	}
	if !strings.Contains(block, "[1] (0:00-1:30)") {
		t.Fatalf("first line missing index/time range:\n%s", block)
	}
	if !strings.Contains(block, "[3] (3:20-4:50)") {
		t.Fatalf("third line missing index/time range:\n%s", block)
	}
	if !strings.Contains(block, "Episode 2") {
		t.Fatalf("recording title missing:\n%s", block)
	}
}

func TestBuildEvidenceBlockNeverLeaksChunkIDs(t *testing.T) {
	segs := testSegments(4)
	block, _ := BuildEvidenceBlock(segs, 900)
	for _, seg := range segs {
		if strings.Contains(block, seg.ChunkID.String()) {
			t.Fatalf("chunk id %s leaked into evidence block", seg.ChunkID)
		}
		if strings.Contains(block, seg.MediaURL) {
			t.Fatalf("media url leaked into evidence block")
		}
	}
}

func TestBuildEvidenceBlockTruncatesWithEllipsis(t *testing.T) {
	segs := testSegments(1)
	segs[0].Text = strings.Repeat("word ", 300)
	block, _ := BuildEvidenceBlock(segs, 100)
	if !strings.Contains(block, "…") {
		t.Fatalf("truncated text missing ellipsis:\n%s", block)
	}
	lines := strings.Split(block, "\n")
	if len(lines) < 2 || len(lines[1]) > 110 {
		t.Fatalf("text line not truncated: %d chars", len(lines[1]))
	}
}

func TestTrimToCharsKeepsRuneBoundaries(t *testing.T) {
	// 40 two-byte runes and no spaces, so the byte cutoff lands mid-rune and
	// the space-boundary fallback never applies.
	s := strings.Repeat("é", 40)
	got := trimToChars(s, 33)
	if !utf8.ValidString(got) {
		t.Fatalf("trimmed text is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated text missing ellipsis: %q", got)
	}
	if len(got) > 33+len("…") {
		t.Fatalf("trimmed text too long: %d bytes", len(got))
	}
}

func TestBuildEvidenceBlockEmpty(t *testing.T) {
	block, index := BuildEvidenceBlock(nil, 900)
	if block != "" || index != nil {
		t.Fatalf("empty input should produce empty block")
	}
}

func TestFormatHMS(t *testing.T) {
	cases := []struct {
		sec  float64
		want string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{599.9, "9:59"},
		{3600, "1:00:00"},
		{3723, "1:02:03"},
		{-5, "0:00"},
	}
	for _, tc := range cases {
		if got := formatHMS(tc.sec); got != tc.want {
			t.Fatalf("formatHMS(%v) = %q, want %q", tc.sec, got, tc.want)
		}
	}
}

func TestBuildUserPromptContainsQuestionAndEvidence(t *testing.T) {
	segs := testSegments(2)
	block, _ := BuildEvidenceBlock(segs, 450)
	prompt := buildUserPrompt(StyleQuotes, "What did the guest say about pricing?", block)
	if !strings.Contains(prompt, "What did the guest say about pricing?") {
		t.Fatalf("question missing from prompt")
	}
	if !strings.Contains(prompt, "[2]") {
		t.Fatalf("evidence block missing from prompt")
	}
}
