// Package strategy implements the hypothetical script modifications a
// what-if run can apply. Each strategy is pure over the scene slice it
// receives: it returns a new slice and never mutates its input, so a
// failed modification leaves the batch state untouched.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cinerate/cinerate-api/internal/capability"
	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// Strategy applies one family of modification types.
type Strategy interface {
	// CanHandle reports whether the strategy owns the given type tag.
	CanHandle(modType string) bool

	// Apply executes the modification against a scene snapshot. Bad
	// parameters and runtime failures are both reported inside the
	// result; the returned scenes are then the input unchanged.
	Apply(ctx context.Context, scenes []models.Scene, mod models.Modification, sc capability.ScriptContext) ([]models.Scene, models.ModificationResult)
}

// Registry resolves modification type tags to strategies in a fixed
// order.
type Registry struct {
	strategies []Strategy
}

// NewRegistry wires the built-in strategies. A nil rewriter leaves
// llm_rewrite registered but failing at apply time, so batches that
// include it still run end to end.
func NewRegistry(rewriter capability.Rewriter) *Registry {
	return &Registry{strategies: []Strategy{
		NewSceneRemoval(),
		NewContentReduction(),
		NewCharacterFocused(),
		NewLLMRewrite(rewriter),
	}}
}

// Resolve finds the strategy owning a type tag.
func (r *Registry) Resolve(modType string) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.CanHandle(modType) {
			return s, true
		}
	}
	return nil, false
}

// ValidateBatch checks that every type tag in the batch is known.
// Only an unknown tag fails the whole batch; parameter problems stay
// local to their modification and surface in its result at apply time.
func (r *Registry) ValidateBatch(mods []models.Modification) error {
	for i, mod := range mods {
		if _, ok := r.Resolve(mod.Type); !ok {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("modification %d: unknown type %q", i, mod.Type))
		}
	}
	return nil
}

// ApplyBatch runs modifications sequentially over the scene snapshot.
// Each result records success or failure; a failed modification leaves
// the running scene set as it was.
func (r *Registry) ApplyBatch(ctx context.Context, scenes []models.Scene, mods []models.Modification, sc capability.ScriptContext) ([]models.Scene, []models.ModificationResult) {
	current := cloneScenes(scenes)
	results := make([]models.ModificationResult, 0, len(mods))
	for _, mod := range mods {
		s, ok := r.Resolve(mod.Type)
		if !ok {
			results = append(results, failure(mod.Type, fmt.Sprintf("unknown type %q", mod.Type)))
			continue
		}
		next, result := s.Apply(ctx, current, mod, sc)
		if result.Error == "" {
			current = next
		}
		results = append(results, result)
	}
	return current, results
}

var paramValidator = validator.New()

// decodeParams unmarshals and validates a strategy parameter struct.
func decodeParams(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code,
			appErrors.ErrValidation.Status, "malformed parameters")
	}
	if err := paramValidator.Struct(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code,
			appErrors.ErrValidation.Status, "invalid parameters")
	}
	return nil
}

func cloneScenes(scenes []models.Scene) []models.Scene {
	out := make([]models.Scene, len(scenes))
	copy(out, scenes)
	return out
}

func failure(modType, msg string) models.ModificationResult {
	return models.ModificationResult{Type: modType, Error: msg}
}

func sceneByIndex(scenes []models.Scene, index int) (int, bool) {
	for i, s := range scenes {
		if s.Index == index {
			return i, true
		}
	}
	return -1, false
}
