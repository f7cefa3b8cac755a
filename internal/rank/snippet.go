package rank

import "strings"

const (
	snippetMaxTokens = 150
	snippetRawChars  = 600
)

// SelectSnippet picks the passage of a section most relevant to the query:
// the best-scoring sentence with one sentence of context on each side,
// trimmed to a token budget. Falls back to the leading text when the
// section has no sentence structure.
func SelectSnippet(raw, query string) string {
	text := NormalizeText(raw)
	sentences := SplitSentences(text)
	// A single blob without sentence punctuation is unstructured.
	if len(sentences) == 0 || (len(sentences) == 1 && !strings.ContainsAny(text, ".!?")) {
		if len(raw) > snippetRawChars {
			return raw[:snippetRawChars]
		}
		return raw
	}

	terms := make(map[string]bool)
	for _, t := range Tokenize(query) {
		if len(t) > 2 {
			terms[t] = true
		}
	}
	bigrams := make(map[string]bool)
	for _, b := range Bigrams(Tokenize(query)) {
		bigrams[b] = true
	}

	// A sentence scores by how many distinct query terms and bigrams it
	// covers; repeating one term does not help.
	best, bestScore := 0, -1
	for i, sent := range sentences {
		toks := Tokenize(sent)
		hitTerms := make(map[string]bool)
		for _, t := range toks {
			if terms[t] {
				hitTerms[t] = true
			}
		}
		hitBigrams := make(map[string]bool)
		for _, b := range Bigrams(toks) {
			if bigrams[b] {
				hitBigrams[b] = true
			}
		}
		score := len(hitTerms) + 2*len(hitBigrams)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	lo, hi := best-1, best+1
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sentences) {
		hi = len(sentences) - 1
	}
	snippet := strings.Join(sentences[lo:hi+1], " ")

	words := strings.Fields(snippet)
	if len(words) > snippetMaxTokens {
		snippet = strings.Join(words[:snippetMaxTokens], " ")
	}
	return snippet
}
