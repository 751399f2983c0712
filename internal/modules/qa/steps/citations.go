package steps

import (
	"strings"

	"github.com/google/uuid"

	"github.com/podquote/podquote-backend/internal/platform/logger"
)

// MappedCitation is a candidate citation resolved to a concrete segment
// with its quote already verified or repaired. Rank is assigned by slice
// position at persistence time.
type MappedCitation struct {
	Segment     RetrievedSegment
	StartSec    float64
	EndSec      float64
	Quote       string
	SpeakerName string
	Repaired    bool
}

type MapCitationsInput struct {
	Style      string
	Candidates []candidateCitation
	Index      map[int]RetrievedSegment
	Segments   []RetrievedSegment
	BoostTerms []string
}

// MapCitations resolves candidate citations back to chunk identifiers,
// verifies every quote, deduplicates per answer and drops unresolvable
// references. The surviving slice preserves generation order; position i
// becomes rank i.
//
// Resolution differs by style. The quote-extraction flow reuses segments
// across candidates, so position i is pinned to segments[i] (or segments[0]
// past the end) to keep chunk references distinct. The coached flow trusts
// an in-range source index, drops an out-of-range one, and resolves a
// missing index by best text overlap against the quote.
func MapCitations(log *logger.Logger, in MapCitationsInput) []MappedCitation {
	if len(in.Segments) == 0 {
		return nil
	}
	out := make([]MappedCitation, 0, len(in.Candidates))
	seen := make(map[uuid.UUID]bool, len(in.Candidates))

	for i, cand := range in.Candidates {
		var seg RetrievedSegment
		switch {
		case in.Style == StyleQuotes:
			if i < len(in.Segments) {
				seg = in.Segments[i]
			} else {
				seg = in.Segments[0]
			}
		case cand.SourceIndex > 0:
			resolved, ok := in.Index[cand.SourceIndex]
			if !ok {
				log.Warn("dropping citation with unknown source index",
					"source_index", cand.SourceIndex, "sources", len(in.Index))
				continue
			}
			seg = resolved
		default:
			seg = bestOverlapSegment(cand.Quote, in.Segments)
		}

		if seen[seg.ChunkID] {
			log.Warn("dropping duplicate citation for chunk", "chunk_id", seg.ChunkID)
			continue
		}
		seen[seg.ChunkID] = true

		quote, repaired := VerifyQuote(cand.Quote, seg.Text, in.BoostTerms)
		if repaired {
			log.Warn("repaired non-verbatim quote",
				"chunk_id", seg.ChunkID, "original_len", len(cand.Quote), "repaired_len", len(quote))
		}

		start, end := cand.StartSec, cand.EndSec
		if start < seg.StartSec || start >= seg.EndSec {
			start = seg.StartSec
		}
		if end <= start || end > seg.EndSec {
			end = seg.EndSec
		}

		speaker := strings.TrimSpace(cand.SpeakerName)
		if speaker == "" {
			speaker = seg.SpeakerName
		}

		out = append(out, MappedCitation{
			Segment:     seg,
			StartSec:    start,
			EndSec:      end,
			Quote:       quote,
			SpeakerName: speaker,
			Repaired:    repaired,
		})
	}
	return out
}

// bestOverlapSegment scans all retrieved segments for the highest token
// overlap with the quote, falling back to the first segment.
func bestOverlapSegment(quote string, segments []RetrievedSegment) RetrievedSegment {
	wanted := make(map[string]bool)
	for _, t := range quoteTokens(quote) {
		wanted[t] = true
	}
	best := 0
	bestScore := -1
	for i, seg := range segments {
		score := 0
		for _, t := range quoteTokens(seg.Text) {
			if wanted[t] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return segments[best]
}
