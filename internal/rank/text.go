package rank

import (
	"regexp"
	"strings"
)

var (
	hyphenBreakRe = regexp.MustCompile(`(\w)-\n(\w)`)
	bulletPrefRe  = regexp.MustCompile(`(?m)^\s*[•◦▪·o\-\*]\s+`)
	wsRunRe       = regexp.MustCompile(`\s+`)
	wordRe        = regexp.MustCompile(`[a-z0-9]{2,}`)
	sentenceRe    = regexp.MustCompile(`[.!?]\s+`)
	splitTermsRe  = regexp.MustCompile(`[,/;\-]\s*|\s+`)
	alphaTokenRe  = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// NormalizeText prepares raw section text for matching: rejoins words
// hyphenated across line breaks, strips bullet markers, collapses
// whitespace, and lowercases.
func NormalizeText(s string) string {
	s = hyphenBreakRe.ReplaceAllString(s, "$1$2")
	s = bulletPrefRe.ReplaceAllString(s, "")
	s = wsRunRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokenize extracts lowercase word tokens of length >= 2.
func Tokenize(s string) []string {
	return wordRe.FindAllString(strings.ToLower(s), -1)
}

// Bigrams returns adjacent token pairs joined by a space.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// SplitSentences splits normalized text on sentence-ending punctuation.
func SplitSentences(s string) []string {
	locs := sentenceRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []string{s}
	}
	var out []string
	start := 0
	for _, loc := range locs {
		// keep the punctuation with the sentence
		end := loc[0] + 1
		if sent := strings.TrimSpace(s[start:end]); sent != "" {
			out = append(out, sent)
		}
		start = loc[1]
	}
	if sent := strings.TrimSpace(s[start:]); sent != "" {
		out = append(out, sent)
	}
	return out
}

var actionableMarkers = []string{
	"tips", "activities", "things to do", "checklist", "how to",
	"guide", "steps", "instructions", "recommendations",
}

// isActionable reports whether a section reads like practical guidance
// rather than background prose.
func isActionable(title, body string) bool {
	lt := strings.ToLower(title)
	for _, m := range actionableMarkers {
		if strings.Contains(lt, m) {
			return true
		}
	}
	if strings.Contains(body, "• ") || strings.Contains(body, "\n- ") {
		return true
	}
	lb := strings.ToLower(body)
	for _, m := range actionableMarkers {
		if strings.Contains(lb, m) {
			return true
		}
	}
	return false
}

// isQualityTitle is a light check used for the title-quality adjustment:
// a usable title has some length and real words in it.
func isQualityTitle(title string) bool {
	t := strings.TrimSpace(title)
	if len(t) < 5 {
		return false
	}
	alpha := 0
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	return alpha >= 3
}

// queryVariants expands a persona and job description into the set of
// query strings matched against each section.
func queryVariants(persona, job string) []string {
	variants := []string{job, persona + " " + job}

	seen := make(map[string]bool)
	var terms []string
	for _, raw := range splitTermsRe.Split(strings.ToLower(persona+" "+job), -1) {
		t := strings.TrimSpace(raw)
		if len(t) <= 2 || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	if len(terms) > 0 {
		variants = append(variants, strings.Join(terms, " "))
	}
	return variants
}

// jobTerms extracts the distinctive words of a job description for the
// contextual term boosts. Matching is by substring, so terms stay as
// written rather than being reduced to word tokens.
func jobTerms(job string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range splitTermsRe.Split(strings.ToLower(job), -1) {
		t := strings.TrimSpace(raw)
		if len(t) <= 3 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// idfTokens extracts the alphabetic tokens used for document-frequency
// statistics.
func idfTokens(s string) []string {
	return alphaTokenRe.FindAllString(s, -1)
}
