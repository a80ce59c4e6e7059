package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
)

func TestLexiconScorerCleanTextScoresZero(t *testing.T) {
	s := NewLexiconScorer("")

	vec, err := s.Score(context.Background(), "Two friends share a quiet dinner and talk about the harvest.")
	require.NoError(t, err)
	require.NoError(t, vec.Validate())

	for _, d := range models.Dimensions {
		assert.Zero(t, vec[d], "dimension %s", d)
	}
}

func TestLexiconScorerDetectsViolence(t *testing.T) {
	s := NewLexiconScorer("")

	vec, err := s.Score(context.Background(), "He grabs the gun, shoots twice, then tries to kill the guard.")
	require.NoError(t, err)

	assert.Greater(t, vec[models.DimViolence], 0.0)
	assert.Zero(t, vec[models.DimProfanity])
}

func TestLexiconScorerMoreHitsScoreHigher(t *testing.T) {
	s := NewLexiconScorer("")
	ctx := context.Background()

	mild, err := s.Score(ctx, "A fight breaks out.")
	require.NoError(t, err)
	severe, err := s.Score(ctx, "A fight breaks out. He stabs one man, shoots another and leaves the bloody murder scene.")
	require.NoError(t, err)

	assert.Greater(t, severe[models.DimViolence], mild[models.DimViolence])
}

func TestLexiconScorerDeterministic(t *testing.T) {
	s := NewLexiconScorer("")
	ctx := context.Background()
	text := "Blood everywhere. He lights a cigarette, pours whiskey, and loads the rifle."

	first, err := s.Score(ctx, text)
	require.NoError(t, err)
	second, err := s.Score(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A fresh scorer instance must agree too: the score is a function
	// of text and model version only.
	third, err := NewLexiconScorer("").Score(ctx, text)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestLexiconScorerBounded(t *testing.T) {
	s := NewLexiconScorer("")

	var heavy string
	for i := 0; i < 50; i++ {
		heavy += "kill murder slaughter torture stab shoot "
	}
	vec, err := s.Score(context.Background(), heavy)
	require.NoError(t, err)
	require.NoError(t, vec.Validate())
	assert.Less(t, vec[models.DimViolence], 1.0)
	assert.Greater(t, vec[models.DimViolence], 0.9)
}

func TestLexiconScorerModelVersion(t *testing.T) {
	assert.Equal(t, "lexicon-v1", NewLexiconScorer("").ModelVersion())
	assert.Equal(t, "custom-v2", NewLexiconScorer("custom-v2").ModelVersion())
}
