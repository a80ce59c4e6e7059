package rating

import (
	"regexp"
	"strings"

	"github.com/cinerate/cinerate-api/internal/models"
	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// sluglineRe recognizes scene headings: an interior/exterior marker
// followed by location and time-of-day ("INT. KITCHEN - NIGHT").
var sluglineRe = regexp.MustCompile(`(?i)^\s*(INT\.|EXT\.|INT/EXT\.?|I/E\.?|EST\.)\s+\S`)

// Segment splits raw script text into ordered scenes. Segmentation is
// pure and deterministic: identical text always yields identical scene
// boundaries, and scene indices are the public scene IDs referenced by
// modification parameters.
//
// Text with no recognized headings yields a single synthetic scene
// holding the whole text, so the pipeline is defined on any non-empty
// input. Empty input is a ParsingError.
func Segment(text string) ([]models.Scene, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, appErrors.Clone(appErrors.ErrParsing, "script text is empty")
	}

	lines := strings.Split(text, "\n")

	var scenes []models.Scene
	var heading string
	var body []string
	started := false

	flush := func() {
		if !started {
			return
		}
		scenes = append(scenes, models.Scene{
			Index:   len(scenes),
			Heading: heading,
			Body:    strings.TrimSpace(strings.Join(body, "\n")),
		})
	}

	for _, line := range lines {
		if sluglineRe.MatchString(line) {
			flush()
			heading = strings.TrimSpace(line)
			body = body[:0]
			started = true
			continue
		}
		if started {
			body = append(body, line)
		}
	}
	flush()

	if len(scenes) == 0 {
		scenes = append(scenes, models.Scene{Index: 0, Heading: "", Body: trimmed})
	}

	return scenes, nil
}
