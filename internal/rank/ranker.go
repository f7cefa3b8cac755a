package rank

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/section"
)

const (
	minLengthChars = 250
	maxLengthChars = 5000
	ceMinPool      = 10
	ceCandidates   = 3
)

// DefaultTopN is the number of sections surfaced per collection.
const DefaultTopN = 5

// DefaultDiversity is the penalty applied to near-duplicate results
// during final selection.
const DefaultDiversity = 0.3

// Result is a ranked section with its relevance score and the passage
// that justified it.
type Result struct {
	Section section.Section
	Score   float64
	Snippet string
	Rank    int
}

// Ranker scores sections against a persona and job description and
// selects the most relevant, diverse subset.
type Ranker struct {
	Embedder  embed.Embedder
	Reranker  embed.Reranker // optional precision pass
	Weights   Weights
	TopN      int
	Diversity float64
	Log       *slog.Logger
}

func NewRanker(embedder embed.Embedder, reranker embed.Reranker, log *slog.Logger) *Ranker {
	return &Ranker{
		Embedder:  embedder,
		Reranker:  reranker,
		Weights:   DefaultWeights(),
		TopN:      DefaultTopN,
		Diversity: DefaultDiversity,
		Log:       log,
	}
}

// DocText is the canonical matching text for a section: its title plus
// the normalized body. Embeddings keyed on this form are shared between
// ranking and the cross-collection library.
func DocText(s section.Section) string {
	return s.Title + "\n" + NormalizeText(s.Text)
}

type candidate struct {
	idx    int
	score  float64
	ce     float64
	mmr    float64
	hasMMR bool
}

func (c candidate) retained() float64 {
	if c.hasMMR {
		return c.mmr
	}
	return c.score
}

// Rank scores every section and returns the top-N most relevant, most
// diverse ones with importance ranks assigned from 1.
func (r *Ranker) Rank(ctx context.Context, sections []section.Section, persona, job string) ([]Result, error) {
	if len(sections) == 0 {
		return nil, nil
	}
	topN := r.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	variants := queryVariants(persona, job)
	for i := range variants {
		variants[i] = NormalizeText(variants[i])
	}
	query := persona + " " + job

	bodies := make([]string, len(sections))
	docTexts := make([]string, len(sections))
	for i, s := range sections {
		bodies[i] = NormalizeText(s.Text)
		docTexts[i] = DocText(s)
	}

	inputs := make([]string, 0, len(variants)+len(sections))
	inputs = append(inputs, variants...)
	inputs = append(inputs, docTexts...)
	vecs, err := r.Embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	queryVecs := vecs[:len(variants)]
	docVecs := vecs[len(variants):]

	lexical, err := r.lexicalScores(variants, docTexts)
	if err != nil {
		return nil, fmt.Errorf("lexical scores: %w", err)
	}

	idf := corpusIDF(docTexts)

	jTerms := jobTerms(job)
	queryBigrams := make(map[string]bool)
	for _, b := range Bigrams(Tokenize(query)) {
		queryBigrams[b] = true
	}

	cands := make([]candidate, len(sections))
	for i, s := range sections {
		semantic := 0.0
		for _, qv := range queryVecs {
			if cos := embed.Cosine(qv, docVecs[i]); cos > semantic {
				semantic = cos
			}
		}

		score := r.Weights.Semantic*semantic + r.Weights.Lexical*lexical[i]

		score += levelScores[s.Level] * r.Weights.LevelBoost
		if s.Page > 0 {
			score += (1.0 / float64(s.Page)) * r.Weights.PageBoost
		}
		if isActionable(s.Title, s.Text) {
			score += r.Weights.Actionable
		}
		if n := len(s.Text); n > minLengthChars && n < maxLengthChars {
			score += r.Weights.LengthBonus
		} else {
			score -= r.Weights.LengthPen
		}
		if isQualityTitle(s.Title) {
			score += r.Weights.TitleQuality
		} else {
			score -= r.Weights.TitleQuality
		}

		// Both contextual boosts run over the same job-term list with
		// substring presence, rarer terms counting for more.
		jobBoost, idfBoost := 0.0, 0.0
		lowerDoc := strings.ToLower(docTexts[i])
		for _, t := range jTerms {
			if !strings.Contains(lowerDoc, t) {
				continue
			}
			jobBoost += r.Weights.JobTermBoost
			idfBoost += idf[t] * r.Weights.IDFBoost
		}
		score += math.Min(jobBoost, r.Weights.JobTermCap)
		score += math.Min(idfBoost, r.Weights.IDFCap)

		bodyToks := Tokenize(bodies[i])
		for _, b := range Bigrams(bodyToks) {
			if queryBigrams[b] {
				score += r.Weights.BodyBigram
				break
			}
		}
		lowerTitle := strings.ToLower(s.Title)
		for _, t := range jTerms {
			if strings.Contains(lowerTitle, t) {
				score += r.Weights.TitleUnigram
				break
			}
		}
		for _, b := range Bigrams(Tokenize(s.Title)) {
			if queryBigrams[b] {
				score += r.Weights.TitleBigram
				break
			}
		}

		cands[i] = candidate{idx: i, score: score}
	}

	sort.SliceStable(cands, func(a, b int) bool { return cands[a].score > cands[b].score })

	cands = r.rerank(ctx, cands, sections, bodies, query, topN)

	selected := r.selectDiverse(cands, docVecs, topN)

	results := make([]Result, len(selected))
	for rank, c := range selected {
		s := sections[c.idx]
		results[rank] = Result{
			Section: s,
			Score:   c.score,
			Snippet: SelectSnippet(s.Text, query),
			Rank:    rank + 1,
		}
	}
	return results, nil
}

// lexicalScores computes normalized full-text match scores, taking the
// best variant per document and scaling by the corpus maximum.
func (r *Ranker) lexicalScores(variants, docTexts []string) ([]float64, error) {
	index, err := NewLexical(docTexts)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	best := make([]float64, len(docTexts))
	for _, v := range variants {
		scores, err := index.Scores(v)
		if err != nil {
			return nil, err
		}
		for i, s := range scores {
			if s > best[i] {
				best[i] = s
			}
		}
	}

	max := 1.0
	for _, s := range best {
		if s > max {
			max = s
		}
	}
	for i := range best {
		best[i] /= max
	}
	return best, nil
}

// corpusIDF computes inverse document frequency for every token in the
// corpus.
func corpusIDF(docs []string) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, t := range idfTokens(strings.ToLower(doc)) {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log((n+1)/(float64(d)+0.5)) + 1
	}
	return idf
}

// rerank runs the optional cross-encoder pass over the head of the
// candidate list. Any reranker failure leaves the heuristic order in
// place.
func (r *Ranker) rerank(ctx context.Context, cands []candidate, sections []section.Section, bodies []string, query string, topN int) []candidate {
	if r.Reranker == nil {
		return cands
	}
	poolSize := ceCandidates * topN
	if poolSize < ceMinPool {
		poolSize = ceMinPool
	}
	if poolSize > len(cands) {
		poolSize = len(cands)
	}
	if poolSize == 0 {
		return cands
	}

	passages := make([]string, poolSize)
	for i := 0; i < poolSize; i++ {
		s := sections[cands[i].idx]
		passages[i] = s.Title + ". " + bodies[cands[i].idx]
	}

	scores, err := r.Reranker.Score(ctx, query, passages)
	if err != nil || len(scores) != poolSize {
		if r.Log != nil {
			r.Log.Warn("reranker unavailable, keeping heuristic order", "error", err)
		}
		return cands
	}

	pool := make([]candidate, poolSize)
	copy(pool, cands[:poolSize])
	for i := range pool {
		pool[i].ce = scores[i]
	}
	sort.SliceStable(pool, func(a, b int) bool {
		if pool[a].ce != pool[b].ce {
			return pool[a].ce > pool[b].ce
		}
		return pool[a].score > pool[b].score
	})

	out := make([]candidate, 0, len(cands))
	out = append(out, pool...)
	out = append(out, cands[poolSize:]...)
	return out
}

// selectDiverse applies a maximal-marginal-relevance sweep: later
// candidates can displace the weakest retained one when their
// redundancy-penalized score wins.
func (r *Ranker) selectDiverse(cands []candidate, docVecs [][]float32, topN int) []candidate {
	if len(cands) <= topN {
		return cands
	}

	retained := make([]candidate, 0, topN)
	retained = append(retained, cands[:topN]...)

	for _, c := range cands[topN:] {
		maxSim := 0.0
		for _, sel := range retained {
			if cos := embed.Cosine(docVecs[c.idx], docVecs[sel.idx]); cos > maxSim {
				maxSim = cos
			}
		}
		c.mmr = c.score - r.Diversity*maxSim
		c.hasMMR = true

		weakest := 0
		for i := 1; i < len(retained); i++ {
			if retained[i].retained() < retained[weakest].retained() {
				weakest = i
			}
		}
		if c.mmr > retained[weakest].retained() {
			retained = append(retained[:weakest], retained[weakest+1:]...)
			retained = append(retained, c)
		}
	}

	sort.SliceStable(retained, func(a, b int) bool { return retained[a].retained() > retained[b].retained() })
	if len(retained) > topN {
		retained = retained[:topN]
	}
	return retained
}
