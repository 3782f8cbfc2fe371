package geoquiz

import (
	"strings"

	"github.com/playperu/geoquiz/internal/geo"
)

// maxGridMismatch is how far an explicit grid may sit from its position.
const maxGridMismatch = 100.0

// PrepareImport validates a bulk import and returns normalized copies of
// the locations: names trimmed, grid positions derived from lat/lng when
// omitted, and order indexes continuing from firstOrder.
func PrepareImport(locs []Location, modes []Mode, firstOrder int) ([]Location, error) {
	if len(locs) == 0 {
		return nil, Errorf(KindValidation, "at least one location is required")
	}
	if len(modes) == 0 {
		return nil, Errorf(KindValidation, "at least one mode is required")
	}

	seen := make(map[Mode]bool, len(modes))
	var needOrigin, needChoices bool
	for _, m := range modes {
		if !m.Valid() {
			return nil, Errorf(KindValidation, "unknown mode %q", m)
		}
		if seen[m] {
			return nil, Errorf(KindValidation, "mode %q listed twice", m)
		}
		seen[m] = true
		needOrigin = needOrigin || m == ModeDirectionDistance
		needChoices = needChoices || m == ModeMultipleChoice
	}

	out := make([]Location, len(locs))
	for i, loc := range locs {
		loc.Name = strings.TrimSpace(loc.Name)
		if loc.Name == "" {
			return nil, Errorf(KindValidation, "location %d: name is required", i+1)
		}
		if !loc.Position.Valid() {
			return nil, Errorf(KindValidation, "location %q: position is out of range", loc.Name)
		}

		derived, err := geo.ToUTM(loc.Position)
		if err != nil {
			return nil, Errorf(KindValidation, "location %q: %v", loc.Name, err)
		}
		if loc.Grid.Zone == 0 {
			loc.Grid = derived
		} else {
			if err := loc.Grid.Validate(); err != nil {
				return nil, Errorf(KindValidation, "location %q: %v", loc.Name, err)
			}
			// imageToUtm scores against the grid and utmToLocation against
			// the position, so both must name the same place.
			d, err := geo.GridDistance(loc.Grid, derived)
			if err != nil {
				return nil, Errorf(KindValidation, "location %q: %v", loc.Name, err)
			}
			if d > maxGridMismatch {
				return nil, Errorf(KindValidation, "location %q: grid is %s from position", loc.Name, geo.FormatDistance(d))
			}
		}

		if needOrigin && (loc.Origin == nil || !loc.Origin.Valid()) {
			return nil, Errorf(KindValidation, "location %q: origin is required for %s", loc.Name, ModeDirectionDistance)
		}
		if needChoices {
			if len(loc.Choices) < 2 {
				return nil, Errorf(KindValidation, "location %q: at least two choices are required for %s", loc.Name, ModeMultipleChoice)
			}
			if loc.CorrectChoice == nil || *loc.CorrectChoice < 0 || *loc.CorrectChoice >= len(loc.Choices) {
				return nil, Errorf(KindValidation, "location %q: correctChoice must index choices", loc.Name)
			}
		}

		urls := make([]string, 0, len(loc.ImageURLs))
		for _, u := range loc.ImageURLs {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		loc.ImageURLs = urls
		loc.Difficulty = strings.TrimSpace(loc.Difficulty)
		loc.Category = strings.TrimSpace(loc.Category)
		loc.OrderIndex = firstOrder + i
		out[i] = loc
	}
	return out, nil
}

// PlanRounds creates one pending round per (location, mode) pair, location
// major, numbered contiguously from firstNumber. Locations must carry IDs.
func PlanRounds(gameID string, locs []Location, modes []Mode, firstNumber, timeLimit int) []Round {
	rounds := make([]Round, 0, len(locs)*len(modes))
	n := firstNumber
	for _, loc := range locs {
		for _, m := range modes {
			rounds = append(rounds, Round{
				GameID:           gameID,
				LocationID:       loc.ID,
				Number:           n,
				Mode:             m,
				Status:           RoundStatusPending,
				TimeLimitSeconds: timeLimit,
			})
			n++
		}
	}
	return rounds
}
