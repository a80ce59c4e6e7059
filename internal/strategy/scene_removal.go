package strategy

import (
	"context"
	"strings"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
)

// SceneRemoval drops whole scenes selected by ID, classified scene
// type, character presence or location. Selectors that match nothing
// are skipped silently; removal is a filter, not a lookup.
type SceneRemoval struct{}

// NewSceneRemoval builds the strategy.
func NewSceneRemoval() *SceneRemoval {
	return &SceneRemoval{}
}

// SceneRemovalParams select the scenes to drop. A scene matching any
// selector is removed. At least one selector must be present.
type SceneRemovalParams struct {
	SceneIDs   []int    `json:"scene_ids"`
	SceneTypes []string `json:"scene_types"`
	Characters []string `json:"characters"`
	Locations  []string `json:"locations"`
}

func (p SceneRemovalParams) empty() bool {
	return len(p.SceneIDs) == 0 && len(p.SceneTypes) == 0 &&
		len(p.Characters) == 0 && len(p.Locations) == 0
}

// CanHandle implements Strategy.
func (s *SceneRemoval) CanHandle(modType string) bool {
	return modType == models.ModRemoveScenes
}

// Apply implements Strategy. Removing every scene is legal and yields
// an empty set. Character and scene-type selectors resolve through the
// shared capability context computed on the baseline scenes.
func (s *SceneRemoval) Apply(_ context.Context, scenes []models.Scene, mod models.Modification, sc capability.ScriptContext) ([]models.Scene, models.ModificationResult) {
	var p SceneRemovalParams
	if err := decodeParams(mod.Params, &p); err != nil {
		return scenes, failure(mod.Type, err.Error())
	}
	if p.empty() {
		return scenes, failure(mod.Type, "requires at least one of scene_ids, scene_types, characters or locations")
	}

	drop := make(map[int]struct{}, len(p.SceneIDs))
	for _, id := range p.SceneIDs {
		drop[id] = struct{}{}
	}
	for _, name := range p.Characters {
		entity, ok := sc.Entities.Character(name)
		if !ok {
			continue
		}
		for _, idx := range entity.Scenes {
			drop[idx] = struct{}{}
		}
	}

	types := foldSet(p.SceneTypes)
	locations := foldSet(p.Locations)

	kept := make([]models.Scene, 0, len(scenes))
	removed := []int{}
	for _, scene := range scenes {
		if s.matches(scene, drop, types, locations, sc) {
			removed = append(removed, scene.Index)
			continue
		}
		kept = append(kept, scene)
	}

	return kept, models.ModificationResult{
		Type: mod.Type,
		Metadata: map[string]interface{}{
			"requested_scene_ids": p.SceneIDs,
			"removed_scene_ids":   removed,
			"scenes_remaining":    len(kept),
		},
	}
}

func (s *SceneRemoval) matches(scene models.Scene, drop map[int]struct{}, types, locations map[string]struct{}, sc capability.ScriptContext) bool {
	if _, ok := drop[scene.Index]; ok {
		return true
	}
	if len(types) > 0 {
		if _, ok := types[strings.ToLower(sc.SceneType(scene.Index))]; ok {
			return true
		}
	}
	if len(locations) > 0 {
		if _, ok := locations[strings.ToLower(capability.LocationFromHeading(scene.Heading))]; ok {
			return true
		}
	}
	return false
}

func foldSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return out
}
