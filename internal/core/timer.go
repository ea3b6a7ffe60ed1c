package core

import "time"

// Stopwatch measures consecutive stages of a generation run.
type Stopwatch struct {
	start time.Time
	last  time.Time
	now   func() time.Time
}

// NewStopwatch starts a stopwatch at the current time.
func NewStopwatch() *Stopwatch {
	return newStopwatch(time.Now)
}

func newStopwatch(now func() time.Time) *Stopwatch {
	t := now()
	return &Stopwatch{start: t, last: t, now: now}
}

// Lap returns the time since the previous lap (or start) and begins a new lap.
func (s *Stopwatch) Lap() time.Duration {
	t := s.now()
	d := t.Sub(s.last)
	s.last = t
	return d
}

// Total returns the time since the stopwatch was started.
func (s *Stopwatch) Total() time.Duration {
	return s.now().Sub(s.start)
}
