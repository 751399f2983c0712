package steps

import "strings"

const (
	StyleCoached = "coached"
	StyleQuotes  = "quotes"
)

// Per-style character budget for each evidence line's text.
const (
	coachedSegmentChars = 900
	quotesSegmentChars  = 450
)

// BuildEvidenceBlock renders ranked segments into a numbered evidence block
// and returns the 1-based index table the citation mapper resolves against.
// The index is the only identifier the model ever sees; chunk ids stay
// internal.
func BuildEvidenceBlock(segments []RetrievedSegment, maxChars int) (string, map[int]RetrievedSegment) {
	if len(segments) == 0 {
		return "", nil
	}
	index := make(map[int]RetrievedSegment, len(segments))
	var b strings.Builder
	for i, seg := range segments {
		n := i + 1
		index[n] = seg
		b.WriteString("[")
		b.WriteString(formatInt(n))
		b.WriteString("] (")
		b.WriteString(formatHMS(seg.StartSec))
		b.WriteString("-")
		b.WriteString(formatHMS(seg.EndSec))
		b.WriteString(")")
		if t := strings.TrimSpace(seg.RecordingTitle); t != "" {
			b.WriteString(" ")
			b.WriteString(t)
		}
		if s := strings.TrimSpace(seg.SpeakerName); s != "" {
			b.WriteString(" — ")
			b.WriteString(s)
		}
		b.WriteString("\n")
		b.WriteString(trimToChars(seg.Text, maxChars))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n"), index
}

func segmentCharBudget(style string) int {
	if style == StyleQuotes {
		return quotesSegmentChars
	}
	return coachedSegmentChars
}

func buildSystemPrompt(style string) string {
	if style == StyleQuotes {
		return strings.TrimSpace(`
You extract direct quotes from podcast transcript excerpts.
Rules:
- Every "quote" value MUST be copied word-for-word from one numbered source. Never paraphrase, trim words from the middle, or merge sentences from different speakers.
- source_index refers to the bracketed number of the source the quote came from.
- start_sec and end_sec come from that source's time range.
- Set "text" to the quotes rendered as markdown blockquotes with speaker attribution, and nothing else. No commentary.`)
	}
	return strings.TrimSpace(`
You answer questions about podcast episodes using ONLY the numbered transcript sources provided.
Rules:
- Write a short, direct answer. Weave in evidence as markdown blockquotes with inline [m:ss] timestamps.
- Every blockquoted passage MUST be copied word-for-word from one numbered source. Never paraphrase inside a blockquote.
- Each citation's source_index refers to the bracketed number of the source the quote came from; start_sec/end_sec come from that source's time range.
- If the sources only partially answer the question, say what they do cover. Do not invent facts.`)
}

func buildUserPrompt(style, question, evidence string) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nSources:\n")
	b.WriteString(evidence)
	if style == StyleQuotes {
		b.WriteString("\n\nReturn the most relevant direct quotes that address the question.")
	} else {
		b.WriteString("\n\nAnswer the question using the sources above.")
	}
	return b.String()
}
