package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// RemoteScorer scores scenes through an external ML scoring service,
// behind the same Scorer contract as the local lexicon backend. The
// remote model must itself be deterministic for a fixed model version;
// this client only transports.
type RemoteScorer struct {
	baseURL      string
	modelVersion string
	client       *http.Client
}

// NewRemoteScorer builds a client for the scoring service.
func NewRemoteScorer(baseURL, modelVersion string, timeout time.Duration) *RemoteScorer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteScorer{
		baseURL:      baseURL,
		modelVersion: modelVersion,
		client:       &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Scores       models.FeatureVector `json:"scores"`
	ModelVersion string               `json:"model_version"`
}

// Score posts the scene text to the scoring service. Timeouts and
// non-200 responses surface as ExternalServiceError with no retry.
func (s *RemoteScorer) Score(ctx context.Context, sceneText string) (models.FeatureVector, error) {
	payload, err := json.Marshal(scoreRequest{Text: sceneText})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code,
			appErrors.ErrExternalService.Status, "scoring service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrExternalService,
			fmt.Sprintf("scoring service returned status %d", resp.StatusCode))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code,
			appErrors.ErrExternalService.Status, "scoring service returned malformed payload")
	}
	if err := out.Scores.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code,
			appErrors.ErrExternalService.Status, "scoring service returned an invalid vector")
	}
	return out.Scores, nil
}

// ModelVersion reports the configured model tag.
func (s *RemoteScorer) ModelVersion() string {
	return s.modelVersion
}
