package server

import (
	"context"
	"testing"
	"time"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 14, 15, 0, 0, 120_000_000, time.UTC)

	tests := []string{
		formatTime(want),
		"2026-03-14T15:00:00.12Z",
		"2026-03-14T15:00:00.120Z",
	}
	for _, s := range tests {
		got, err := parseTime(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if !got.Equal(want) {
			t.Errorf("parse %q: expected %v, got %v", s, want, got)
		}
	}

	if _, err := parseTime("14/03/2026"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		nsec int
	}{
		{"whole second", 0},
		{"two digits", 120_000_000},
		{"trailing zero", 123_456_780},
		{"full precision", 123_456_789},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			ctx := context.Background()
			now := time.Date(2026, 3, 14, 15, 0, 0, tt.nsec, time.UTC)
			e.store.now = func() time.Time { return now }

			m, _, err := e.store.ModeratorByEmail(ctx, testEmail)
			if err != nil {
				t.Fatalf("moderator: %v", err)
			}
			g, err := e.store.CreateGame(ctx, m.ID, NewGame{Name: "Lima", TimeLimitSeconds: geoquiz.DefaultTimeLimit})
			if err != nil {
				t.Fatalf("create game: %v", err)
			}

			got, err := e.store.GetGame(ctx, g.ID)
			if err != nil {
				t.Fatalf("get game: %v", err)
			}
			if !got.CreatedAt.Equal(now) {
				t.Errorf("expected created at %v, got %v", now, got.CreatedAt)
			}

			locs := []geoquiz.Location{{Name: "Plaza Mayor", Position: plazaMayor}}
			if _, err := e.store.ImportLocations(ctx, g.ID, locs, []geoquiz.Mode{geoquiz.ModeUTMToLocation}); err != nil {
				t.Fatalf("import: %v", err)
			}

			joined, err := e.store.JoinTeam(ctx, g.JoinCode, "Los Incas", "")
			if err != nil {
				t.Fatalf("join: %v", err)
			}
			teams, err := e.store.ListTeams(ctx, g.ID)
			if err != nil {
				t.Fatalf("list teams: %v", err)
			}
			if len(teams) != 1 || teams[0].ID != joined.Team.ID {
				t.Fatalf("unexpected teams %+v", teams)
			}
			if !teams[0].JoinedAt.Equal(now) || !teams[0].LastSeenAt.Equal(now) {
				t.Errorf("expected joined and last seen at %v, got %v and %v", now, teams[0].JoinedAt, teams[0].LastSeenAt)
			}
		})
	}
}
