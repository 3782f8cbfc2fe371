// Package scoring converts guess accuracy into points and orders teams
// into a leaderboard.
package scoring

import (
	"math"
	"time"
)

const (
	// MaxPoints is awarded for any guess within PerfectRadius.
	MaxPoints = 1000
	// PerfectRadius is the flat plateau, in meters, that earns MaxPoints.
	PerfectRadius = 10.0
	// ZeroRadius is the distance, in meters, at and beyond which a guess
	// earns nothing.
	ZeroRadius = 5000.0

	// MaxTimeBonus is the bonus for an instant answer.
	MaxTimeBonus = 200
	// BonusWindow is how long the time bonus takes to decay to zero.
	BonusWindow = 30 * time.Second

	decayRate = 5.0
)

// Score maps a distance in meters to points in [0, MaxPoints] with a flat
// plateau up to PerfectRadius, exponential decay in between and a hard
// floor at ZeroRadius.
func Score(distance float64) int {
	switch {
	case math.IsNaN(distance):
		return 0
	case distance <= PerfectRadius:
		return MaxPoints
	case distance >= ZeroRadius:
		return 0
	}

	norm := (distance - PerfectRadius) / (ZeroRadius - PerfectRadius)
	return int(math.Round(MaxPoints * math.Exp(-decayRate*norm)))
}

// TimeBonus decays linearly from MaxTimeBonus at zero response time to 0
// at BonusWindow.
func TimeBonus(response time.Duration) int {
	if response <= 0 {
		return MaxTimeBonus
	}
	if response >= BonusWindow {
		return 0
	}
	remaining := 1 - float64(response)/float64(BonusWindow)
	return int(math.Round(MaxTimeBonus * remaining))
}

// Config selects which terms make up a guess total.
type Config struct {
	TimeBonus bool
}

// Breakdown is the per-guess result stored at submission time.
type Breakdown struct {
	Accuracy int `json:"accuracy"`
	Bonus    int `json:"bonus"`
	Total    int `json:"total"`
}

// ForDistance scores a distance-based guess.
func (c Config) ForDistance(distance float64, response time.Duration) Breakdown {
	return c.combine(Score(distance), response)
}

// ForChoice scores a multiple-choice guess: all or nothing on accuracy,
// with the bonus only for correct answers.
func (c Config) ForChoice(correct bool, response time.Duration) Breakdown {
	if !correct {
		return Breakdown{}
	}
	return c.combine(MaxPoints, response)
}

func (c Config) combine(accuracy int, response time.Duration) Breakdown {
	b := Breakdown{Accuracy: accuracy}
	if c.TimeBonus && accuracy > 0 {
		b.Bonus = TimeBonus(response)
	}
	b.Total = b.Accuracy + b.Bonus
	return b
}
