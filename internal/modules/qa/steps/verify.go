package steps

import "strings"

// VerifyQuote enforces the verbatim invariant for one quote against its
// cited source text. The generative step paraphrases, trims and blends
// speakers even when told not to, so nothing it emits is trusted.
//
// If the normalized quote is a substring of the normalized source, the quote
// is accepted with its original casing and punctuation. Otherwise the quote
// is repaired: the source is split into sentences and the sentence with the
// highest token-overlap score against the quote wins, ties going to the
// earliest occurrence. boostTerms add a fixed bonus to sentences containing
// a domain-distinctive term; pass nil when there is none.
//
// The second return reports whether a repair happened, so callers can log
// it as a quality signal.
func VerifyQuote(quote, source string, boostTerms []string) (string, bool) {
	trimmed := strings.TrimSpace(quote)
	normQuote := normalizeQuote(quote)
	normSource := normalizeQuote(source)
	if normQuote != "" && strings.Contains(normSource, normQuote) {
		return trimmed, false
	}

	sentences := splitSentences(source)
	if len(sentences) == 0 {
		return strings.TrimSpace(source), true
	}

	wanted := make(map[string]bool)
	for _, t := range quoteTokens(quote) {
		wanted[t] = true
	}

	best := 0
	bestScore := -1
	for i, sent := range sentences {
		score := 0
		for _, t := range quoteTokens(sent) {
			if wanted[t] {
				score++
			}
		}
		normSent := normalizeQuote(sent)
		for _, term := range boostTerms {
			if term != "" && strings.Contains(normSent, normalizeQuote(term)) {
				score += 2
			}
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return sentences[best], true
}
