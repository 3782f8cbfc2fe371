package server

import (
	"context"
	"encoding/json"
	"sync"
)

const (
	EventGameStatus     = "game.status"
	EventRoundStatus    = "round.status"
	EventTeamJoined     = "team.joined"
	EventTeamLeft       = "team.left"
	EventTeamRemoved    = "team.removed"
	EventGuessSubmitted = "guess.submitted"
)

// Event is published to everyone watching a game. It never carries guess
// scores or distances; clients refetch results after a reveal.
type Event struct {
	Type        string `json:"type" msgpack:"type"`
	GameID      string `json:"gameId" msgpack:"gameId"`
	Status      string `json:"status,omitempty" msgpack:"status,omitempty"`
	RoundID     string `json:"roundId,omitempty" msgpack:"roundId,omitempty"`
	RoundNumber int    `json:"roundNumber,omitempty" msgpack:"roundNumber,omitempty"`
	TeamID      string `json:"teamId,omitempty" msgpack:"teamId,omitempty"`
	TeamName    string `json:"teamName,omitempty" msgpack:"teamName,omitempty"`
}

// Publisher fans events out to game subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Broker is an in-process pub/sub for game events, keyed by game ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the game.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the game's subscribers.
func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gameID], ch)
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all local subscribers of ev.GameID.
func (b *Broker) Publish(_ context.Context, ev Event) {
	data, _ := json.Marshal(ev)
	b.mu.RLock()
	for ch := range b.subs[ev.GameID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports how many local listeners a game has.
func (b *Broker) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}
