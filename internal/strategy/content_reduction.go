package strategy

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// ContentReduction softens one or more content dimensions in place by
// rewriting trigger vocabulary. It handles both the generic
// reduce_content tag and the per-dimension shorthand tags.
type ContentReduction struct{}

// NewContentReduction builds the strategy.
func NewContentReduction() *ContentReduction {
	return &ContentReduction{}
}

// ContentReductionParams scope the reduction. An empty scene list
// means the whole script. For the shorthand tags the dimension comes
// from the type tag; the generic tag takes either a single dimension
// or a list. Caller replacements take precedence over the built-in
// rules.
type ContentReductionParams struct {
	Dimension    string            `json:"dimension" validate:"omitempty,oneof=violence gore sex_act nudity profanity drugs child_risk"`
	Dimensions   []string          `json:"dimensions" validate:"omitempty,dive,oneof=violence gore sex_act nudity profanity drugs child_risk"`
	Intensity    string            `json:"intensity" validate:"omitempty,oneof=light moderate aggressive"`
	SceneIDs     []int             `json:"scene_ids" validate:"omitempty,min=1"`
	Replacements map[string]string `json:"replacements"`
}

var shorthandDimensions = map[string]string{
	models.ModReduceViolence:  "violence",
	models.ModReduceProfanity: "profanity",
	models.ModReduceGore:      "gore",
	models.ModReduceSexual:    "sex_act",
	models.ModReduceDrugs:     "drugs",
}

// CanHandle implements Strategy.
func (s *ContentReduction) CanHandle(modType string) bool {
	if modType == models.ModReduceContent {
		return true
	}
	_, ok := shorthandDimensions[modType]
	return ok
}

// Apply implements Strategy. Unlike scene removal, a scoped scene ID
// that does not exist is an error: the caller named a specific target
// and got it wrong.
func (s *ContentReduction) Apply(_ context.Context, scenes []models.Scene, mod models.Modification, _ capability.ScriptContext) ([]models.Scene, models.ModificationResult) {
	var p ContentReductionParams
	if err := decodeParams(mod.Params, &p); err != nil {
		return scenes, failure(mod.Type, err.Error())
	}
	dimensions, err := resolveDimensions(mod.Type, p)
	if err != nil {
		return scenes, failure(mod.Type, err.Error())
	}
	intensity := p.Intensity
	if intensity == "" {
		intensity = "moderate"
	}

	targets := map[int]struct{}{}
	for _, id := range p.SceneIDs {
		if _, ok := sceneByIndex(scenes, id); !ok {
			return scenes, failure(mod.Type, fmt.Sprintf("scene %d not found", id))
		}
		targets[id] = struct{}{}
	}

	rules := customRules(p.Replacements)
	for _, dim := range dimensions {
		rules = append(rules, replacementRules[dim]...)
	}

	out := cloneScenes(scenes)
	touched := []int{}
	total := 0
	for i := range out {
		if len(targets) > 0 {
			if _, ok := targets[out[i].Index]; !ok {
				continue
			}
		}
		body, n := reduceText(out[i].Body, rules, intensity)
		if n == 0 {
			continue
		}
		out[i].Body = body
		touched = append(touched, out[i].Index)
		total += n
	}

	return out, models.ModificationResult{
		Type: mod.Type,
		Metadata: map[string]interface{}{
			"dimension":      strings.Join(dimensions, ","),
			"intensity":      intensity,
			"scenes_touched": touched,
			"replacements":   total,
		},
	}
}

func resolveDimensions(modType string, p ContentReductionParams) ([]string, error) {
	if dim, ok := shorthandDimensions[modType]; ok {
		return []string{dim}, nil
	}
	if len(p.Dimensions) > 0 {
		return p.Dimensions, nil
	}
	if p.Dimension != "" {
		return []string{p.Dimension}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "reduce_content requires a dimension")
}

// customRules turns a caller replacement map into strong rules. They
// run before the built-in set so the caller's wording wins. Sorted for
// deterministic application order.
func customRules(replacements map[string]string) []replacement {
	if len(replacements) == 0 {
		return nil
	}
	words := make([]string, 0, len(replacements))
	for word := range replacements {
		words = append(words, word)
	}
	sort.Strings(words)

	rules := make([]replacement, 0, len(words))
	for _, word := range words {
		rules = append(rules, rule(regexp.QuoteMeta(word), replacements[word], true))
	}
	return rules
}

// reduceText rewrites one scene body and reports how many edits it
// made. Aggressive intensity drops whole lines that matched a strong
// rule instead of softening them.
func reduceText(body string, rules []replacement, intensity string) (string, int) {
	if len(rules) == 0 {
		return body, 0
	}

	edits := 0
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if intensity == "aggressive" {
			dropped := false
			for _, r := range rules {
				if r.strong && r.pattern.MatchString(line) {
					dropped = true
					break
				}
			}
			if dropped {
				edits++
				continue
			}
		}
		for _, r := range rules {
			if intensity == "light" && !r.strong {
				continue
			}
			if n := len(r.pattern.FindAllStringIndex(line, -1)); n > 0 {
				line = r.pattern.ReplaceAllString(line, r.with)
				edits += n
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), edits
}
