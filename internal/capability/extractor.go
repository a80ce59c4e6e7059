package capability

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/cinerate/cinerate-api/internal/models"
)

// HeuristicExtractor derives entities from screenplay conventions: a
// character cue is a short all-caps line introducing dialogue, and a
// location is what the slugline names. No model required, output is
// deterministic.
type HeuristicExtractor struct{}

// NewHeuristicExtractor builds the extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

var (
	characterCueRe = regexp.MustCompile(`^\s*([A-Z][A-Z .'-]{1,28}[A-Z.])\s*(\(.*\))?\s*$`)
	headingTrimRe  = regexp.MustCompile(`(?i)^(INT\.|EXT\.|INT/EXT\.?|I/E\.?|EST\.)\s*`)
	objectRe       = regexp.MustCompile(`(?i)\b(gun|rifle|knife|pistol|sword|car|phone|briefcase|syringe|bottle)\w*`)
)

type tally struct {
	mentions int
	scenes   map[int]struct{}
}

// ExtractEntities scans every scene for character cues, slugline
// locations and notable objects.
func (e *HeuristicExtractor) ExtractEntities(_ context.Context, scenes []models.Scene) (Entities, error) {
	characters := map[string]*tally{}
	locations := map[string]*tally{}
	objects := map[string]*tally{}

	record := func(m map[string]*tally, name string, sceneIndex int) {
		t, ok := m[name]
		if !ok {
			t = &tally{scenes: map[int]struct{}{}}
			m[name] = t
		}
		t.mentions++
		t.scenes[sceneIndex] = struct{}{}
	}

	for _, scene := range scenes {
		if loc := LocationFromHeading(scene.Heading); loc != "" {
			record(locations, loc, scene.Index)
		}

		for _, line := range strings.Split(scene.Body, "\n") {
			if name, ok := CharacterCue(line); ok {
				record(characters, name, scene.Index)
			}
		}

		for _, m := range objectRe.FindAllString(scene.Body, -1) {
			record(objects, strings.ToLower(m), scene.Index)
		}
	}

	return Entities{
		Characters: flatten(characters),
		Locations:  flatten(locations),
		Objects:    flatten(objects),
	}, nil
}

// LocationFromHeading strips the interior/exterior marker and the
// time-of-day suffix, leaving the bare location name.
func LocationFromHeading(heading string) string {
	if heading == "" {
		return ""
	}
	loc := headingTrimRe.ReplaceAllString(heading, "")
	if idx := strings.LastIndex(loc, " - "); idx >= 0 {
		loc = loc[:idx]
	}
	return strings.TrimSpace(loc)
}

// CharacterCue reports whether a line is a dialogue cue and returns
// the character name it introduces.
func CharacterCue(line string) (string, bool) {
	m := characterCueRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if !looksLikeCue(name) {
		return "", false
	}
	return name, true
}

// looksLikeCue filters out all-caps lines that are not character cues:
// transitions, camera directions and sluglines themselves.
func looksLikeCue(name string) bool {
	switch {
	case strings.HasSuffix(name, ":"),
		strings.HasSuffix(name, "TO"), // CUT TO, DISSOLVE TO
		strings.HasPrefix(name, "INT"),
		strings.HasPrefix(name, "EXT"),
		name == "FADE IN" || name == "FADE OUT" || name == "THE END":
		return false
	}
	return len(strings.Fields(name)) <= 3
}

func flatten(m map[string]*tally) []Entity {
	out := make([]Entity, 0, len(m))
	for name, t := range m {
		sceneIDs := make([]int, 0, len(t.scenes))
		for idx := range t.scenes {
			sceneIDs = append(sceneIDs, idx)
		}
		sort.Ints(sceneIDs)
		out = append(out, Entity{Name: name, Mentions: t.mentions, Scenes: sceneIDs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].Name < out[j].Name
	})
	return out
}
