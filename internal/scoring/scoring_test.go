package scoring_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/playperu/geoquiz/internal/scoring"
)

func TestScoreBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     int
	}{
		{"exact hit", 0, 1000},
		{"inside plateau", 5, 1000},
		{"plateau edge", 10, 1000},
		{"zero radius", 5000, 0},
		{"just past zero radius", 5001, 0},
		{"far away", 6000, 0},
		{"negative treated as hit", -3, 1000},
		{"nan scores nothing", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.Score(tt.distance))
		})
	}
}

func TestScoreDecay(t *testing.T) {
	// Halfway through the decay band: 1000 * e^-2.5.
	mid := scoring.PerfectRadius + (scoring.ZeroRadius-scoring.PerfectRadius)/2
	assert.Equal(t, 82, scoring.Score(mid))

	assert.Equal(t, 7, scoring.Score(4999))
	assert.Less(t, scoring.Score(11), 1000+1)
	assert.Greater(t, scoring.Score(11), 990)
}

func TestScoreMonotonicAndBounded(t *testing.T) {
	prev := scoring.Score(0)
	for d := 0.0; d <= 6000; d += 0.5 {
		s := scoring.Score(d)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, scoring.MaxPoints)
		if s > prev {
			t.Fatalf("score increased from %d to %d at %.1fm", prev, s, d)
		}
		prev = s
	}
}

func TestTimeBonus(t *testing.T) {
	tests := []struct {
		response time.Duration
		want     int
	}{
		{0, 200},
		{-time.Second, 200},
		{15 * time.Second, 100},
		{3 * time.Second, 180},
		{30 * time.Second, 0},
		{45 * time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.response.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.TimeBonus(tt.response))
		})
	}
}

func TestConfig(t *testing.T) {
	t.Run("minimal config ignores response time", func(t *testing.T) {
		b := scoring.Config{}.ForDistance(5, time.Second)
		assert.Equal(t, scoring.Breakdown{Accuracy: 1000, Bonus: 0, Total: 1000}, b)
	})

	t.Run("time bonus adds to accuracy", func(t *testing.T) {
		b := scoring.Config{TimeBonus: true}.ForDistance(5, 15*time.Second)
		assert.Equal(t, scoring.Breakdown{Accuracy: 1000, Bonus: 100, Total: 1100}, b)
	})

	t.Run("no bonus for a zero-point guess", func(t *testing.T) {
		b := scoring.Config{TimeBonus: true}.ForDistance(6000, 0)
		assert.Equal(t, 0, b.Total)
	})

	t.Run("choice", func(t *testing.T) {
		assert.Equal(t, 1000, scoring.Config{}.ForChoice(true, time.Second).Total)
		assert.Equal(t, 0, scoring.Config{TimeBonus: true}.ForChoice(false, 0).Total)
	})
}
