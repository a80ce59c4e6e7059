package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
)

// LLMRewrite replaces scene text with the output of the rewrite
// capability. Without a configured rewriter the strategy still
// registers so batches degrade to a per-modification error instead of
// failing validation.
type LLMRewrite struct {
	rewriter capability.Rewriter
}

// NewLLMRewrite builds the strategy. rewriter may be nil.
func NewLLMRewrite(rewriter capability.Rewriter) *LLMRewrite {
	return &LLMRewrite{rewriter: rewriter}
}

// LLMRewriteParams carry the free-text instruction and an optional
// scene scope. An absent scope rewrites every scene.
type LLMRewriteParams struct {
	SceneIDs      []int  `json:"scene_ids" validate:"omitempty,min=1"`
	Instruction   string `json:"instruction" validate:"required"`
	PreserveStyle bool   `json:"preserve_style"`
}

// CanHandle implements Strategy.
func (s *LLMRewrite) CanHandle(modType string) bool {
	return modType == models.ModLLMRewrite
}

// Apply implements Strategy. The modification is atomic: if any scene
// in scope fails to rewrite, none of the rewrites land.
func (s *LLMRewrite) Apply(ctx context.Context, scenes []models.Scene, mod models.Modification, _ capability.ScriptContext) ([]models.Scene, models.ModificationResult) {
	var p LLMRewriteParams
	if err := decodeParams(mod.Params, &p); err != nil {
		return scenes, failure(mod.Type, err.Error())
	}
	if s.rewriter == nil {
		return scenes, failure(mod.Type, "rewrite capability not configured")
	}

	positions := make([]int, 0, len(scenes))
	if len(p.SceneIDs) == 0 {
		for i := range scenes {
			positions = append(positions, i)
		}
	} else {
		for _, id := range p.SceneIDs {
			pos, ok := sceneByIndex(scenes, id)
			if !ok {
				return scenes, failure(mod.Type, fmt.Sprintf("scene %d not found", id))
			}
			positions = append(positions, pos)
		}
	}

	out := cloneScenes(scenes)
	rewritten := []int{}
	charsBefore, charsAfter := 0, 0
	for _, pos := range positions {
		original := scenes[pos]
		text, err := s.rewriter.Rewrite(ctx, original.Text(), p.Instruction, p.PreserveStyle)
		if err != nil {
			return scenes, failure(mod.Type, err.Error())
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return scenes, failure(mod.Type, fmt.Sprintf("rewrite produced empty text for scene %d", original.Index))
		}

		heading, body := splitRewritten(text, original.Heading)
		out[pos].Heading = heading
		out[pos].Body = body
		rewritten = append(rewritten, original.Index)
		charsBefore += len(original.Text())
		charsAfter += len(text)
	}

	return out, models.ModificationResult{
		Type: mod.Type,
		Metadata: map[string]interface{}{
			"scene_ids":    rewritten,
			"instruction":  p.Instruction,
			"chars_before": charsBefore,
			"chars_after":  charsAfter,
		},
	}
}

// splitRewritten keeps the original heading unless the model emitted a
// new slugline as its first line.
func splitRewritten(text, originalHeading string) (string, string) {
	lines := strings.SplitN(text, "\n", 2)
	first := strings.TrimSpace(lines[0])
	upper := strings.ToUpper(first)
	if strings.HasPrefix(upper, "INT.") || strings.HasPrefix(upper, "EXT.") ||
		strings.HasPrefix(upper, "INT/EXT") || strings.HasPrefix(upper, "EST.") {
		body := ""
		if len(lines) == 2 {
			body = strings.TrimSpace(lines[1])
		}
		return first, body
	}
	return originalHeading, text
}
