package rating

import (
	"context"
	"regexp"
	"sort"

	"github.com/cinerate/cinerate-api/internal/models"
)

// Scorer is the feature-scoring capability contract. Score must be a
// pure function of its input text for a fixed model version: same text,
// same vector. That determinism is what makes re-scoring idempotent and
// before/after comparisons sound.
type Scorer interface {
	Score(ctx context.Context, sceneText string) (models.FeatureVector, error)
	ModelVersion() string
}

// LexiconScorer scores scenes from weighted trigger vocabularies. It is
// the default backend: fully local, deterministic and cheap. A remote
// ML backend can be swapped in behind the same contract.
type LexiconScorer struct {
	version  string
	patterns map[models.Dimension][]termPattern
}

type termPattern struct {
	re     *regexp.Regexp
	weight float64
}

// lexicon holds per-dimension trigger terms with severity weights.
// Multi-word phrases are matched as literal sequences.
var lexicon = map[models.Dimension]map[string]float64{
	models.DimViolence: {
		"kill": 0.9, "murder": 1.0, "shoot": 0.8, "stab": 0.9, "strangle": 0.9,
		"fight": 0.5, "attack": 0.6, "beating": 0.6, "battle": 0.5,
		"punch": 0.4, "kick": 0.3, "weapon": 0.5, "gun": 0.6, "rifle": 0.6,
		"knife": 0.5, "slaughter": 1.0, "torture": 1.0,
	},
	models.DimGore: {
		"blood": 0.7, "bloody": 0.8, "bleeding": 0.7, "gore": 1.0, "guts": 0.8,
		"wound": 0.5, "dismember": 1.0, "mutilate": 1.0, "corpse": 0.7,
		"entrails": 1.0, "severed": 0.9,
	},
	models.DimSexAct: {
		"sex": 0.7, "rape": 1.0, "intercourse": 0.8, "orgasm": 0.9,
		"erotic": 0.6, "seduce": 0.4, "make love": 0.6,
	},
	models.DimNudity: {
		"naked": 0.7, "nude": 0.7, "undress": 0.5, "topless": 0.8,
		"strips off": 0.6, "bare": 0.3,
	},
	models.DimProfanity: {
		"fuck": 1.0, "shit": 0.6, "motherfucker": 1.0, "bitch": 0.7,
		"asshole": 0.7, "bastard": 0.5, "goddamn": 0.4, "damn": 0.2,
	},
	models.DimDrugs: {
		"heroin": 0.9, "cocaine": 0.9, "marijuana": 0.7, "meth": 0.9,
		"overdose": 0.8, "syringe": 0.6, "drugs": 0.5, "drunk": 0.3,
		"whiskey": 0.2, "smokes": 0.2,
	},
	models.DimChildRisk: {
		"child abuse": 1.0, "kidnap": 0.8, "abduct": 0.8, "molest": 1.0,
		"child soldier": 1.0, "missing child": 0.6,
	},
}

// NewLexiconScorer compiles the built-in lexicon. Patterns compile in
// sorted term order so construction and scoring stay deterministic.
func NewLexiconScorer(version string) *LexiconScorer {
	if version == "" {
		version = "lexicon-v1"
	}
	patterns := make(map[models.Dimension][]termPattern, len(lexicon))
	for _, d := range models.Dimensions {
		terms := lexicon[d]
		names := make([]string, 0, len(terms))
		for term := range terms {
			names = append(names, term)
		}
		sort.Strings(names)
		compiled := make([]termPattern, 0, len(names))
		for _, term := range names {
			compiled = append(compiled, termPattern{
				re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\w*`),
				weight: terms[term],
			})
		}
		patterns[d] = compiled
	}
	return &LexiconScorer{version: version, patterns: patterns}
}

// Score computes a full feature vector for the scene text. Raw weighted
// hit counts are squashed into [0,1) with x/(x+c), which is monotone in
// the amount of trigger vocabulary present.
func (s *LexiconScorer) Score(_ context.Context, sceneText string) (models.FeatureVector, error) {
	vec := models.ZeroVector()
	for _, d := range models.Dimensions {
		raw := 0.0
		for _, tp := range s.patterns[d] {
			hits := tp.re.FindAllStringIndex(sceneText, -1)
			raw += tp.weight * float64(len(hits))
		}
		vec[d] = squash(raw)
	}
	return vec, nil
}

// ModelVersion tags results for traceability.
func (s *LexiconScorer) ModelVersion() string {
	return s.version
}

func squash(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	return raw / (raw + 1.5)
}
