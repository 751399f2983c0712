package steps

import (
	"strings"
	"testing"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

func mapInput(style string, segs []RetrievedSegment, cands []candidateCitation) MapCitationsInput {
	index := make(map[int]RetrievedSegment, len(segs))
	for i, s := range segs {
		index[i+1] = s
	}
	return MapCitationsInput{
		Style:      style,
		Candidates: cands,
		Index:      index,
		Segments:   segs,
	}
}

func TestMapCitationsDropsUnknownSourceIndex(t *testing.T) {
	segs := testSegments(2)
	segs[0].Text = "We talked about growth. Growth was the theme."
	cands := []candidateCitation{
		{SourceIndex: 1, StartSec: segs[0].StartSec, EndSec: segs[0].EndSec, Quote: "We talked about growth."},
		{SourceIndex: 9, StartSec: 0, EndSec: 10, Quote: "ghost quote"},
	}
	out := MapCitations(logger.NewNop(), mapInput(StyleCoached, segs, cands))
	if len(out) != 1 {
		t.Fatalf("got %d citations, want 1 (unknown index dropped)", len(out))
	}
	if out[0].Segment.ChunkID != segs[0].ChunkID {
		t.Fatalf("surviving citation resolved to wrong segment")
	}
}

func TestMapCitationsDeduplicatesChunks(t *testing.T) {
	segs := testSegments(3)
	cands := []candidateCitation{
		{SourceIndex: 2, StartSec: segs[1].StartSec, EndSec: segs[1].EndSec, Quote: segs[1].Text},
		{SourceIndex: 2, StartSec: segs[1].StartSec, EndSec: segs[1].EndSec, Quote: segs[1].Text},
		{SourceIndex: 3, StartSec: segs[2].StartSec, EndSec: segs[2].EndSec, Quote: segs[2].Text},
	}
	out := MapCitations(logger.NewNop(), mapInput(StyleCoached, segs, cands))
	if len(out) != 2 {
		t.Fatalf("got %d citations, want 2 (duplicate dropped)", len(out))
	}
	if out[0].Segment.ChunkID != segs[1].ChunkID || out[1].Segment.ChunkID != segs[2].ChunkID {
		t.Fatalf("generation order not preserved after dedupe")
	}
}

func TestMapCitationsQuoteStyleAssignsDistinctSegments(t *testing.T) {
	segs := testSegments(3)
	// The model claims every quote came from source 1; the quote flow pins
	// position i to segment i instead.
	cands := []candidateCitation{
		{SourceIndex: 1, Quote: segs[0].Text},
		{SourceIndex: 1, Quote: segs[1].Text},
		{SourceIndex: 1, Quote: segs[2].Text},
	}
	out := MapCitations(logger.NewNop(), mapInput(StyleQuotes, segs, cands))
	if len(out) != 3 {
		t.Fatalf("got %d citations, want 3", len(out))
	}
	for i, mc := range out {
		if mc.Segment.ChunkID != segs[i].ChunkID {
			t.Fatalf("position %d not pinned to segment %d", i, i)
		}
	}
}

func TestMapCitationsCoachedResolvesMissingIndexByOverlap(t *testing.T) {
	segs := testSegments(2)
	segs[0].Text = "All about kubernetes clusters and scheduling pods."
	segs[1].Text = "Completely different topic regarding cooking pasta tonight."
	cands := []candidateCitation{
		{SourceIndex: 0, Quote: "different topic regarding cooking pasta"},
	}
	out := MapCitations(logger.NewNop(), mapInput(StyleCoached, segs, cands))
	if len(out) != 1 {
		t.Fatalf("got %d citations, want 1", len(out))
	}
	if out[0].Segment.ChunkID != segs[1].ChunkID {
		t.Fatalf("overlap resolution picked the wrong segment")
	}
}

func TestMapCitationsClampsTimesToSegment(t *testing.T) {
	segs := testSegments(1)
	cands := []candidateCitation{
		{SourceIndex: 1, StartSec: -50, EndSec: 100000, Quote: segs[0].Text},
	}
	out := MapCitations(logger.NewNop(), mapInput(StyleCoached, segs, cands))
	if len(out) != 1 {
		t.Fatalf("got %d citations, want 1", len(out))
	}
	if out[0].StartSec != segs[0].StartSec || out[0].EndSec != segs[0].EndSec {
		t.Fatalf("times not clamped: [%v, %v]", out[0].StartSec, out[0].EndSec)
	}
}

func TestMapCitationsVerifiesEveryQuote(t *testing.T) {
	segs := testSegments(1)
	segs[0].Text = "The roadmap ships next quarter. Hiring is frozen until then."
	cands := []candidateCitation{
		{SourceIndex: 1, Quote: "they froze hiring until the roadmap ships"},
	}
	out := MapCitations(logger.NewNop(), mapInput(StyleCoached, segs, cands))
	if len(out) != 1 {
		t.Fatalf("got %d citations, want 1", len(out))
	}
	if !out[0].Repaired {
		t.Fatalf("paraphrased quote not flagged as repaired")
	}
	if !strings.Contains(normalizeQuote(segs[0].Text), normalizeQuote(out[0].Quote)) {
		t.Fatalf("persisted quote %q violates verbatim invariant", out[0].Quote)
	}
}
