package rank

import "github.com/dgallion1/docsift/internal/outline"

// Weights holds every scoring coefficient used by the Ranker. The defaults
// were tuned against travel-guide, cookbook, and HR-form collections.
type Weights struct {
	Semantic float64
	Lexical  float64

	LevelBoost float64
	PageBoost  float64

	Actionable  float64
	LengthBonus float64
	LengthPen   float64

	TitleQuality float64

	JobTermBoost float64
	JobTermCap   float64

	IDFBoost float64
	IDFCap   float64

	BodyBigram   float64
	TitleUnigram float64
	TitleBigram  float64
}

func DefaultWeights() Weights {
	return Weights{
		Semantic:     0.65,
		Lexical:      0.20,
		LevelBoost:   0.1,
		PageBoost:    0.05,
		Actionable:   0.05,
		LengthBonus:  0.05,
		LengthPen:    0.10,
		TitleQuality: 0.07,
		JobTermBoost: 0.03,
		JobTermCap:   0.12,
		IDFBoost:     0.02,
		IDFCap:       0.10,
		BodyBigram:   0.10,
		TitleUnigram: 0.10,
		TitleBigram:  0.05,
	}
}

// levelScores weight section headings by prominence.
var levelScores = map[outline.Level]float64{
	outline.H1: 1.0,
	outline.H2: 0.7,
	outline.H3: 0.5,
}
