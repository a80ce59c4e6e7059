// Package capability defines the contracts for the external ML/LLM
// capabilities the pipeline consumes, plus local heuristic
// implementations that keep the core runnable without any model
// service. Capabilities are injected explicitly so the deterministic
// scoring and aggregation core stays free of network concerns.
package capability

import (
	"context"
	"strings"

	"github.com/cinerate/cinerate-api/internal/models"
)

// Entity is one named thing mentioned in the script.
type Entity struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
	Scenes   []int  `json:"scenes"`
}

// Entities groups extraction output by kind.
type Entities struct {
	Characters []Entity `json:"characters"`
	Locations  []Entity `json:"locations"`
	Objects    []Entity `json:"objects"`
}

// Character looks up a character by name, case-insensitively.
func (e Entities) Character(name string) (Entity, bool) {
	for _, c := range e.Characters {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Entity{}, false
}

// EntityExtractor pulls characters, locations and objects out of a
// scene set.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, scenes []models.Scene) (Entities, error)
}

// SceneClassification labels one scene with a type from a fixed set.
type SceneClassification struct {
	SceneType  string  `json:"scene_type"`
	Confidence float64 `json:"confidence"`
}

// SceneClassifier assigns a type to every scene in input order.
type SceneClassifier interface {
	ClassifyScenes(ctx context.Context, scenes []models.Scene) ([]SceneClassification, error)
}

// Rewriter is the optional free-text rewrite capability. When absent,
// only llm_rewrite modifications are rejected; the rest of the
// pipeline is unaffected.
type Rewriter interface {
	Rewrite(ctx context.Context, sceneText, instruction string, preserveStyle bool) (string, error)
}

// ScriptContext carries the per-batch capability output shared by all
// modifications in a what-if run. Computed once on the baseline scene
// set to avoid redundant external calls.
type ScriptContext struct {
	Entities   Entities
	SceneTypes map[int]SceneClassification
}

// SceneType returns the classified type for a scene index, or "".
func (c ScriptContext) SceneType(index int) string {
	if c.SceneTypes == nil {
		return ""
	}
	return c.SceneTypes[index].SceneType
}
