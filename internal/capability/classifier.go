package capability

import (
	"context"
	"regexp"
	"strings"

	"github.com/cinerate/cinerate-api/internal/models"
)

// Scene types form a fixed closed set.
const (
	SceneTypeAction     = "action"
	SceneTypeDialogue   = "dialogue"
	SceneTypeEmotional  = "emotional"
	SceneTypeSuspense   = "suspense"
	SceneTypeRomantic   = "romantic"
	SceneTypeComedic    = "comedic"
	SceneTypeExposition = "exposition"
)

// KeywordClassifier labels scenes by trigger-vocabulary density. It is
// the local stand-in for a zero-shot model behind the same contract.
type KeywordClassifier struct {
	vocab map[string]*regexp.Regexp
}

var classifierVocab = map[string][]string{
	SceneTypeAction:    {"fight", "chase", "run", "explo", "shoot", "punch", "crash", "attack", "leap", "struggle"},
	SceneTypeEmotional: {"cries", "tears", "sob", "grief", "embrace", "trembl", "whisper", "mourn"},
	SceneTypeSuspense:  {"creep", "shadow", "silence", "footstep", "lurk", "darkness", "slowly", "watches"},
	SceneTypeRomantic:  {"kiss", "love", "caress", "tender", "romantic", "holds her", "holds him"},
	SceneTypeComedic:   {"laugh", "joke", "grin", "chuckle", "giggle", "absurd"},
}

// sceneTypeOrder fixes iteration order so classification is
// deterministic.
var sceneTypeOrder = []string{
	SceneTypeAction,
	SceneTypeEmotional,
	SceneTypeSuspense,
	SceneTypeRomantic,
	SceneTypeComedic,
}

// NewKeywordClassifier compiles the classification vocabulary.
func NewKeywordClassifier() *KeywordClassifier {
	vocab := make(map[string]*regexp.Regexp, len(classifierVocab))
	for sceneType, terms := range classifierVocab {
		escaped := make([]string, len(terms))
		for i, t := range terms {
			escaped[i] = regexp.QuoteMeta(t)
		}
		vocab[sceneType] = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\w*`)
	}
	return &KeywordClassifier{vocab: vocab}
}

// ClassifyScenes labels every scene in input order. Scenes with no
// trigger vocabulary fall back to dialogue when cue-heavy, otherwise
// exposition.
func (c *KeywordClassifier) ClassifyScenes(_ context.Context, scenes []models.Scene) ([]SceneClassification, error) {
	out := make([]SceneClassification, len(scenes))
	for i, scene := range scenes {
		out[i] = c.classify(scene)
	}
	return out, nil
}

func (c *KeywordClassifier) classify(scene models.Scene) SceneClassification {
	best := ""
	bestHits := 0
	total := 0
	for _, sceneType := range sceneTypeOrder {
		hits := len(c.vocab[sceneType].FindAllString(scene.Body, -1))
		total += hits
		if hits > bestHits {
			best = sceneType
			bestHits = hits
		}
	}

	if best == "" {
		if cueLines(scene.Body) >= 2 {
			return SceneClassification{SceneType: SceneTypeDialogue, Confidence: 0.5}
		}
		return SceneClassification{SceneType: SceneTypeExposition, Confidence: 0.3}
	}

	confidence := float64(bestHits) / float64(total)
	return SceneClassification{SceneType: best, Confidence: confidence}
}

func cueLines(body string) int {
	count := 0
	for _, line := range strings.Split(body, "\n") {
		if _, ok := CharacterCue(line); ok {
			count++
		}
	}
	return count
}
