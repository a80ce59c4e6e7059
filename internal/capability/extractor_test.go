package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
)

func testScenes() []models.Scene {
	return []models.Scene{
		{
			Index:   0,
			Heading: "INT. WAREHOUSE - NIGHT",
			Body:    "MARA\nPut the gun down.\n\nDECKER\n(quietly)\nNot a chance.\n\nDecker raises the gun.",
		},
		{
			Index:   1,
			Heading: "EXT. HARBOR - DAY",
			Body:    "MARA\nWe can still walk away.\n\nShe drops the knife into the water.",
		},
	}
}

func TestExtractEntities_Characters(t *testing.T) {
	entities, err := NewHeuristicExtractor().ExtractEntities(context.Background(), testScenes())
	require.NoError(t, err)

	require.Len(t, entities.Characters, 2)
	assert.Equal(t, "MARA", entities.Characters[0].Name)
	assert.Equal(t, 2, entities.Characters[0].Mentions)
	assert.Equal(t, []int{0, 1}, entities.Characters[0].Scenes)

	decker, ok := entities.Character("decker")
	require.True(t, ok)
	assert.Equal(t, []int{0}, decker.Scenes)
}

func TestExtractEntities_LocationsAndObjects(t *testing.T) {
	entities, err := NewHeuristicExtractor().ExtractEntities(context.Background(), testScenes())
	require.NoError(t, err)

	require.Len(t, entities.Locations, 2)
	names := []string{entities.Locations[0].Name, entities.Locations[1].Name}
	assert.Contains(t, names, "WAREHOUSE")
	assert.Contains(t, names, "HARBOR")

	require.NotEmpty(t, entities.Objects)
	assert.Equal(t, "gun", entities.Objects[0].Name)
	assert.Equal(t, 2, entities.Objects[0].Mentions)
}

func TestExtractEntities_IgnoresTransitionsAndSluglines(t *testing.T) {
	scenes := []models.Scene{{
		Index:   0,
		Heading: "INT. OFFICE - DAY",
		Body:    "CUT TO\n\nFADE OUT\n\nINT. HALLWAY\n\nJONES\nHello.",
	}}
	entities, err := NewHeuristicExtractor().ExtractEntities(context.Background(), scenes)
	require.NoError(t, err)

	require.Len(t, entities.Characters, 1)
	assert.Equal(t, "JONES", entities.Characters[0].Name)
}

func TestLocationFromHeading(t *testing.T) {
	assert.Equal(t, "WAREHOUSE", LocationFromHeading("INT. WAREHOUSE - NIGHT"))
	assert.Equal(t, "CITY STREET", LocationFromHeading("EXT. CITY STREET - DAY"))
	assert.Equal(t, "BARN", LocationFromHeading("I/E. BARN"))
	assert.Equal(t, "", LocationFromHeading(""))
}
