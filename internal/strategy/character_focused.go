package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// CharacterFocused edits a script around one character: removing them,
// renaming them, or softening what they do. The character must exist
// in the extracted entity set; editing around a name nobody mentions
// is a caller mistake, not a no-op.
type CharacterFocused struct{}

// NewCharacterFocused builds the strategy.
func NewCharacterFocused() *CharacterFocused {
	return &CharacterFocused{}
}

// CharacterParams name the target and, for the generic
// modify_character tag, the action to take. RemoveScenes switches the
// remove action from line-level edits to dropping every scene the
// character appears in.
type CharacterParams struct {
	Character    string `json:"character" validate:"required"`
	Action       string `json:"action" validate:"omitempty,oneof=remove rename change_actions"`
	NewName      string `json:"new_name"`
	RemoveScenes bool   `json:"remove_scenes"`
}

// CanHandle implements Strategy.
func (s *CharacterFocused) CanHandle(modType string) bool {
	switch modType {
	case models.ModModifyCharacter, models.ModRemoveCharacter,
		models.ModRenameCharacter, models.ModChangeCharActs:
		return true
	}
	return false
}

// Apply implements Strategy.
func (s *CharacterFocused) Apply(_ context.Context, scenes []models.Scene, mod models.Modification, sc capability.ScriptContext) ([]models.Scene, models.ModificationResult) {
	var p CharacterParams
	if err := decodeParams(mod.Params, &p); err != nil {
		return scenes, failure(mod.Type, err.Error())
	}
	action, err := resolveAction(mod.Type, p)
	if err != nil {
		return scenes, failure(mod.Type, err.Error())
	}
	if action == "rename" && strings.TrimSpace(p.NewName) == "" {
		return scenes, failure(mod.Type, "rename requires new_name")
	}

	entity, ok := sc.Entities.Character(p.Character)
	if !ok {
		return scenes, failure(mod.Type, fmt.Sprintf("character %q not found in script", p.Character))
	}

	if action == "remove" && p.RemoveScenes {
		return dropCharacterScenes(scenes, mod.Type, entity)
	}

	out := cloneScenes(scenes)
	edits := 0
	for i := range out {
		var body string
		var n int
		switch action {
		case "remove":
			body, n = removeCharacter(out[i].Body, entity.Name)
		case "rename":
			body, n = renameCharacter(out[i].Body, entity.Name, p.NewName)
		case "change_actions":
			body, n = softenCharacterActions(out[i].Body, entity.Name)
		}
		if n > 0 {
			out[i].Body = body
			edits += n
		}
	}

	return out, models.ModificationResult{
		Type: mod.Type,
		Metadata: map[string]interface{}{
			"character": entity.Name,
			"action":    action,
			"edits":     edits,
		},
	}
}

// dropCharacterScenes removes every scene the extractor saw the
// character in. Dropping all of them is legal and yields an empty set.
func dropCharacterScenes(scenes []models.Scene, modType string, entity capability.Entity) ([]models.Scene, models.ModificationResult) {
	drop := make(map[int]struct{}, len(entity.Scenes))
	for _, idx := range entity.Scenes {
		drop[idx] = struct{}{}
	}

	kept := make([]models.Scene, 0, len(scenes))
	removed := []int{}
	for _, scene := range scenes {
		if _, ok := drop[scene.Index]; ok {
			removed = append(removed, scene.Index)
			continue
		}
		kept = append(kept, scene)
	}

	return kept, models.ModificationResult{
		Type: modType,
		Metadata: map[string]interface{}{
			"character":         entity.Name,
			"action":            "remove",
			"removed_scene_ids": removed,
			"scenes_remaining":  len(kept),
		},
	}
}

func resolveAction(modType string, p CharacterParams) (string, error) {
	switch modType {
	case models.ModRemoveCharacter:
		return "remove", nil
	case models.ModRenameCharacter:
		return "rename", nil
	case models.ModChangeCharActs:
		return "change_actions", nil
	}
	if p.Action == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "modify_character requires an action")
	}
	return p.Action, nil
}

func nameRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// removeCharacter drops the character's dialogue blocks and rewrites
// remaining mentions to an anonymous reference.
func removeCharacter(body, name string) (string, int) {
	re := nameRe(name)
	edits := 0
	skipping := false
	kept := []string{}
	for _, line := range strings.Split(body, "\n") {
		if skipping {
			if strings.TrimSpace(line) == "" {
				skipping = false
			} else {
				edits++
			}
			continue
		}
		if cue, ok := capability.CharacterCue(line); ok && strings.EqualFold(cue, name) {
			skipping = true
			edits++
			continue
		}
		if n := len(re.FindAllStringIndex(line, -1)); n > 0 {
			line = re.ReplaceAllString(line, "someone")
			edits += n
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), edits
}

// renameCharacter swaps the name everywhere, upper-casing it on cue
// lines to keep screenplay form.
func renameCharacter(body, name, newName string) (string, int) {
	re := nameRe(name)
	edits := 0
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		n := len(re.FindAllStringIndex(line, -1))
		if n == 0 {
			continue
		}
		replacement := newName
		if cue, ok := capability.CharacterCue(line); ok && strings.EqualFold(cue, name) {
			replacement = strings.ToUpper(newName)
		}
		lines[i] = re.ReplaceAllString(line, replacement)
		edits += n
	}
	return strings.Join(lines, "\n"), edits
}

// softenCharacterActions applies the violence softening rules, but
// only on action lines that mention the character.
func softenCharacterActions(body, name string) (string, int) {
	re := nameRe(name)
	rules := replacementRules["violence"]
	edits := 0
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}
		if _, ok := capability.CharacterCue(line); ok {
			continue
		}
		for _, r := range rules {
			if n := len(r.pattern.FindAllStringIndex(line, -1)); n > 0 {
				line = r.pattern.ReplaceAllString(line, r.with)
				edits += n
			}
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), edits
}
