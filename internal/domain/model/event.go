// Package model contains domain models passed between layers.
package model

import "time"

// EventKind distinguishes the two fact types in the workout log.
type EventKind string

const (
	// KindSession is a completed workout session.
	KindSession EventKind = "session"
	// KindSet is a single logged exercise set.
	KindSet EventKind = "set"
)

// WorkoutEvent is an immutable fact from the workout log. The engine only
// reads windowed slices of these; it never mutates or deletes them.
type WorkoutEvent struct {
	UserID         string
	Timestamp      time.Time
	Kind           EventKind
	Duration       time.Duration // sessions only
	Exercise       string        // sets only
	Weight         float64       // kilograms
	Reps           int
	RPE            float64 // rate of perceived exertion, 0-10
	PersonalRecord bool
}

// Volume returns the load volume of a set (weight x reps). Zero for sessions.
func (e WorkoutEvent) Volume() float64 {
	if e.Kind != KindSet {
		return 0
	}
	return e.Weight * float64(e.Reps)
}

// Window is a half-open time range [Start, End). A zero Start means
// unbounded history.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// Filter returns the events that fall inside the window, preserving order.
func (w Window) Filter(events []WorkoutEvent) []WorkoutEvent {
	out := make([]WorkoutEvent, 0, len(events))
	for _, e := range events {
		if w.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}
