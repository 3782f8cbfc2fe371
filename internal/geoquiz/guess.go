package geoquiz

import (
	"math"
	"time"

	"github.com/playperu/geoquiz/internal/geo"
	"github.com/playperu/geoquiz/internal/scoring"
)

// GuessPayload is the mode-dependent answer a team submits. Exactly the
// fields for the round's mode must be set.
type GuessPayload struct {
	// imageToUtm
	UTM *geo.UTM `json:"utm,omitempty"`
	// utmToLocation
	Position *geo.LatLng `json:"position,omitempty"`
	// directionDistance: bearing in degrees and distance in meters from the
	// location origin.
	Bearing  *float64 `json:"bearing,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	// multipleChoice
	Option *int `json:"option,omitempty"`
}

func (p GuessPayload) fieldsSet() int {
	n := 0
	if p.UTM != nil {
		n++
	}
	if p.Position != nil {
		n++
	}
	if p.Bearing != nil || p.Distance != nil {
		n++
	}
	if p.Option != nil {
		n++
	}
	return n
}

// Validate checks that the payload shape matches mode.
func (p GuessPayload) Validate(mode Mode) error {
	if p.fieldsSet() > 1 {
		return Errorf(KindValidation, "guess must only contain the %s answer", mode)
	}

	switch mode {
	case ModeImageToUTM:
		if p.UTM == nil {
			return Errorf(KindValidation, "utm is required for %s rounds", mode)
		}
		if err := p.UTM.Validate(); err != nil {
			return Errorf(KindValidation, "invalid utm: %v", err)
		}
	case ModeUTMToLocation:
		if p.Position == nil {
			return Errorf(KindValidation, "position is required for %s rounds", mode)
		}
		if !p.Position.Valid() {
			return Errorf(KindValidation, "position is out of range")
		}
	case ModeDirectionDistance:
		if p.Bearing == nil || p.Distance == nil {
			return Errorf(KindValidation, "bearing and distance are required for %s rounds", mode)
		}
		if math.IsNaN(*p.Bearing) || *p.Bearing < 0 || *p.Bearing >= 360 {
			return Errorf(KindValidation, "bearing must be in [0, 360)")
		}
		if math.IsNaN(*p.Distance) || *p.Distance < 0 {
			return Errorf(KindValidation, "distance must not be negative")
		}
	case ModeMultipleChoice:
		if p.Option == nil {
			return Errorf(KindValidation, "option is required for %s rounds", mode)
		}
	default:
		return Errorf(KindValidation, "unsupported mode %q", mode)
	}
	return nil
}

// CheckGuessWindow enforces the round-state and deadline preconditions for
// a submission at now. A deadline equal to now is still open.
func CheckGuessWindow(g *Game, r *Round, now time.Time) error {
	if r.Status != RoundStatusGuessing {
		return Errorf(KindInvalidState, "round %d is not accepting guesses (%s)", r.Number, r.Status)
	}
	if g.Status != GameStatusPlaying {
		return Errorf(KindInvalidState, "game is %s", g.Status)
	}
	if r.Deadline != nil && now.After(*r.Deadline) {
		return ErrDeadlineExpired
	}
	return nil
}

// Evaluate computes the guessed position, distance and points for a
// payload that already passed Validate.
func Evaluate(loc Location, r *Round, p GuessPayload, cfg scoring.Config, now time.Time) (Guess, error) {
	g := Guess{
		RoundID:     r.ID,
		Payload:     p,
		SubmittedAt: now,
	}
	if r.GuessingStartedAt != nil {
		g.ResponseTime = now.Sub(*r.GuessingStartedAt)
	}

	var points scoring.Breakdown
	switch r.Mode {
	case ModeImageToUTM:
		pos, err := p.UTM.LatLng()
		if err != nil {
			return Guess{}, Errorf(KindValidation, "invalid utm: %v", err)
		}
		d, err := geo.GridDistance(loc.Grid, *p.UTM)
		if err != nil {
			return Guess{}, Errorf(KindValidation, "invalid utm: %v", err)
		}
		g.Position, g.DistanceMeters = &pos, &d
		points = cfg.ForDistance(d, g.ResponseTime)

	case ModeUTMToLocation:
		pos := *p.Position
		d := geo.Haversine(pos, loc.Position)
		g.Position, g.DistanceMeters = &pos, &d
		points = cfg.ForDistance(d, g.ResponseTime)

	case ModeDirectionDistance:
		if loc.Origin == nil {
			return Guess{}, Errorf(KindValidation, "location %q has no origin", loc.Name)
		}
		pos := geo.Destination(*loc.Origin, *p.Bearing, *p.Distance)
		d := geo.Haversine(pos, loc.Position)
		g.Position, g.DistanceMeters = &pos, &d
		points = cfg.ForDistance(d, g.ResponseTime)

	case ModeMultipleChoice:
		if *p.Option < 0 || *p.Option >= len(loc.Choices) {
			return Guess{}, Errorf(KindValidation, "option must be between 0 and %d", len(loc.Choices)-1)
		}
		correct := loc.CorrectChoice != nil && *loc.CorrectChoice == *p.Option
		points = cfg.ForChoice(correct, g.ResponseTime)

	default:
		return Guess{}, Errorf(KindValidation, "unsupported mode %q", r.Mode)
	}

	g.AccuracyScore = points.Accuracy
	g.TimeBonus = points.Bonus
	g.Score = points.Total
	return g, nil
}
