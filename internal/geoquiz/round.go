package geoquiz

import "time"

// RoundAction is a moderator command on a single round.
type RoundAction string

const (
	RoundStart     RoundAction = "start"
	RoundCountdown RoundAction = "countdown"
	RoundReveal    RoundAction = "reveal"
	RoundComplete  RoundAction = "complete"
)

// Transition applies action to r within game g. hasNext tells Complete
// whether round r.Number+1 exists. Every precondition is checked before
// anything is mutated, so a failed transition leaves r and g untouched.
func Transition(g *Game, r *Round, action RoundAction, hasNext bool, now time.Time) error {
	if g.Status != GameStatusPlaying {
		return Errorf(KindInvalidState, "game is %s, rounds can only change while playing", g.Status)
	}

	switch action {
	case RoundStart:
		return r.start(g, now)
	case RoundCountdown:
		return r.startCountdown(now)
	case RoundReveal:
		return r.reveal(now)
	case RoundComplete:
		return r.complete(g, hasNext, now)
	}
	return Errorf(KindValidation, "unknown round action %q", action)
}

func invalidTransition(r *Round, action RoundAction) error {
	return Errorf(KindInvalidState, "invalid transition: cannot %s round %d while %s", action, r.Number, r.Status)
}

func (r *Round) start(g *Game, now time.Time) error {
	if r.Status != RoundStatusPending {
		return invalidTransition(r, RoundStart)
	}
	if r.Number != g.CurrentRound {
		return Errorf(KindInvalidState, "round %d is not the current round (%d)", r.Number, g.CurrentRound)
	}
	r.Status = RoundStatusShowing
	r.StartedAt = &now
	return nil
}

func (r *Round) startCountdown(now time.Time) error {
	if r.Status != RoundStatusShowing {
		return invalidTransition(r, RoundCountdown)
	}
	deadline := now.Add(time.Duration(r.TimeLimitSeconds) * time.Second)
	r.Status = RoundStatusGuessing
	r.GuessingStartedAt = &now
	r.Deadline = &deadline
	return nil
}

func (r *Round) reveal(now time.Time) error {
	if r.Status != RoundStatusShowing && r.Status != RoundStatusGuessing {
		return invalidTransition(r, RoundReveal)
	}
	r.Status = RoundStatusReveal
	r.RevealedAt = &now
	return nil
}

func (r *Round) complete(g *Game, hasNext bool, now time.Time) error {
	if r.Status != RoundStatusReveal {
		return invalidTransition(r, RoundComplete)
	}
	r.Status = RoundStatusCompleted
	r.CompletedAt = &now
	if hasNext {
		g.CurrentRound = r.Number + 1
		return nil
	}
	g.Status = GameStatusFinished
	g.FinishedAt = &now
	return nil
}
