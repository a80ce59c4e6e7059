package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

type stubVersionStore struct {
	versions []models.ScriptVersion
}

func (s *stubVersionStore) Create(_ context.Context, version *models.ScriptVersion) error {
	for i := range s.versions {
		s.versions[i].IsCurrent = false
	}
	version.VersionNumber = len(s.versions) + 1
	version.IsCurrent = true
	s.versions = append(s.versions, *version)
	return nil
}

func (s *stubVersionStore) List(_ context.Context, scriptID string) ([]models.ScriptVersion, error) {
	out := []models.ScriptVersion{}
	for i := len(s.versions) - 1; i >= 0; i-- {
		if s.versions[i].ScriptID == scriptID {
			out = append(out, s.versions[i])
		}
	}
	return out, nil
}

func (s *stubVersionStore) GetByNumber(_ context.Context, scriptID string, number int) (*models.ScriptVersion, error) {
	for i := range s.versions {
		if s.versions[i].ScriptID == scriptID && s.versions[i].VersionNumber == number {
			v := s.versions[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (s *stubVersionStore) GetCurrent(_ context.Context, scriptID string) (*models.ScriptVersion, error) {
	for i := range s.versions {
		if s.versions[i].ScriptID == scriptID && s.versions[i].IsCurrent {
			v := s.versions[i]
			return &v, nil
		}
	}
	return nil, nil
}

func (s *stubVersionStore) SetCurrent(_ context.Context, scriptID string, number int) error {
	for i := range s.versions {
		if s.versions[i].ScriptID == scriptID {
			s.versions[i].IsCurrent = s.versions[i].VersionNumber == number
		}
	}
	return nil
}

func (s *stubVersionStore) Delete(_ context.Context, scriptID string, number int) error {
	for i := range s.versions {
		if s.versions[i].ScriptID == scriptID && s.versions[i].VersionNumber == number {
			s.versions = append(s.versions[:i], s.versions[i+1:]...)
			return nil
		}
	}
	return nil
}

func ratingPtr(r models.Rating) *models.Rating { return &r }
func intPtr(n int) *int                        { return &n }

func newVersionFixture(t *testing.T) (*VersionService, *stubVersionStore, *stubScriptStore) {
	t.Helper()
	scripts := newStubScriptStore()
	_, err := scripts.Create(context.Background(), "Heat Wave", violentScript)
	require.NoError(t, err)

	store := &stubVersionStore{}
	svc := NewVersionService(store, scripts, nil)
	return svc, store, scripts
}

func TestVersionSnapshotAndList(t *testing.T) {
	svc, _, _ := newVersionFixture(t)

	first, err := svc.Snapshot(context.Background(), "script-1", "initial draft")
	require.NoError(t, err)
	assert.Equal(t, 1, first.VersionNumber)
	assert.True(t, first.IsCurrent)

	second, err := svc.Snapshot(context.Background(), "script-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, second.VersionNumber)
	assert.Nil(t, second.ChangeDescription)

	versions, err := svc.List(context.Background(), "script-1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.True(t, versions[0].IsCurrent)
	assert.False(t, versions[1].IsCurrent)
}

func TestVersionRestore(t *testing.T) {
	svc, _, scripts := newVersionFixture(t)

	_, err := svc.Snapshot(context.Background(), "script-1", "v1")
	require.NoError(t, err)
	scripts.scripts["script-1"].Content = "EXT. PARK - DAY\nA quiet walk."
	_, err = svc.Snapshot(context.Background(), "script-1", "v2")
	require.NoError(t, err)

	restored, err := svc.Restore(context.Background(), "script-1", 1)
	require.NoError(t, err)
	assert.True(t, restored.IsCurrent)
	assert.Equal(t, violentScript, scripts.scripts["script-1"].Content)
	assert.Equal(t, 1, scripts.scripts["script-1"].CurrentVersion)
}

func TestVersionRestoreSnapshotsCurrentState(t *testing.T) {
	svc, store, scripts := newVersionFixture(t)

	_, err := svc.Snapshot(context.Background(), "script-1", "v1")
	require.NoError(t, err)
	scripts.scripts["script-1"].Content = "EXT. PARK - DAY\nA quiet walk."
	_, err = svc.Snapshot(context.Background(), "script-1", "v2")
	require.NoError(t, err)

	_, err = svc.Restore(context.Background(), "script-1", 1)
	require.NoError(t, err)

	require.Len(t, store.versions, 3)
	backup := store.versions[2]
	assert.Equal(t, 3, backup.VersionNumber)
	assert.Equal(t, "EXT. PARK - DAY\nA quiet walk.", backup.Content)
	require.NotNil(t, backup.ChangeDescription)
	assert.Equal(t, "Backup before restore to v1", *backup.ChangeDescription)
	assert.False(t, backup.IsCurrent)
}

func TestVersionRestoreCurrentConflicts(t *testing.T) {
	svc, _, _ := newVersionFixture(t)
	_, err := svc.Snapshot(context.Background(), "script-1", "v1")
	require.NoError(t, err)

	_, err = svc.Restore(context.Background(), "script-1", 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict))
}

func TestVersionDeleteCurrentRefused(t *testing.T) {
	svc, _, _ := newVersionFixture(t)
	_, err := svc.Snapshot(context.Background(), "script-1", "v1")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "script-1", 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStateConflict))

	err = svc.Delete(context.Background(), "script-1", 9)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestVersionCompare(t *testing.T) {
	svc, store, _ := newVersionFixture(t)

	store.versions = []models.ScriptVersion{
		{
			ScriptID: "script-1", VersionNumber: 1, Content: "a\nb\nc",
			PredictedRating: ratingPtr(models.Rating16),
			AggScores:       models.FeatureVector{models.DimViolence: 0.5, models.DimGore: 0.3, models.DimSexAct: 0, models.DimNudity: 0, models.DimProfanity: 0, models.DimDrugs: 0, models.DimChildRisk: 0},
			TotalScenes:     intPtr(3),
		},
		{
			ScriptID: "script-1", VersionNumber: 2, Content: "a\nb",
			PredictedRating: ratingPtr(models.Rating12),
			AggScores:       models.FeatureVector{models.DimViolence: 0.3, models.DimGore: 0.3, models.DimSexAct: 0, models.DimNudity: 0, models.DimProfanity: 0, models.DimDrugs: 0, models.DimChildRisk: 0},
			TotalScenes:     intPtr(2),
			IsCurrent:       true,
		},
	}

	comparison, err := svc.Compare(context.Background(), "script-1", 1, 2)
	require.NoError(t, err)
	assert.True(t, comparison.RatingChanged)
	assert.Equal(t, -1, comparison.ScenesDelta)
	assert.Equal(t, 1, comparison.LinesChanged)

	change, ok := comparison.ScoreChanges[models.DimViolence]
	require.True(t, ok)
	assert.InDelta(t, -0.2, change.Delta, 1e-9)
	_, ok = comparison.ScoreChanges[models.DimGore]
	assert.False(t, ok)
}
