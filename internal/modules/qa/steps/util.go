package steps

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// formatHMS renders seconds as m:ss, or h:mm:ss past one hour.
func formatHMS(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return formatInt(h) + ":" + pad2(m) + ":" + pad2(s)
	}
	return formatInt(m) + ":" + pad2(s)
}

func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

func pad2(n int) string {
	if n < 10 {
		return "0" + formatInt(n)
	}
	return formatInt(n)
}

func trimToChars(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	// Back the cutoff up to a rune boundary so a multi-byte rune never gets
	// split mid-sequence.
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	cut := s[:end]
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}

// normalizeQuote lowercases, collapses whitespace runs to single spaces and
// trims. Both sides of every verbatim comparison go through this.
func normalizeQuote(s string) string {
	lower := strings.ToLower(s)
	fields := strings.Fields(lower)
	return strings.Join(fields, " ")
}

// quoteTokens splits on whitespace and punctuation and keeps words longer
// than 3 runes, which drops most function words before overlap scoring.
func quoteTokens(s string) []string {
	raw := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len([]rune(t)) > 3 {
			out = append(out, t)
		}
	}
	return out
}

// splitSentences segments on '.', '!' or '?' followed by whitespace (or end
// of text). Plain terminator-based segmentation is good enough for scoring.
func splitSentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var out []string
	runes := []rune(s)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sent := strings.TrimSpace(string(runes[start : i+1]))
		if sent != "" {
			out = append(out, sent)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}
