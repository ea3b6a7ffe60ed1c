package generator

import (
	"log/slog"

	"stellarator/internal/body"
	"stellarator/internal/expr"
	"stellarator/internal/preset"
	"stellarator/internal/terrain"
	rng "stellarator/pkg/core"
)

// Session is the state owned by one body's generation. The random source is
// shared with the run and drawn from sequentially; nothing in a session is
// touched by another body.
type Session struct {
	Seed  int64
	Rand  rng.Random
	Body  body.Body
	Eval  *expr.Evaluator
	Stack *terrain.Stack
}

// NewSession binds b to a fresh evaluator drawing from r.
func NewSession(r rng.Random, b body.Body, log *slog.Logger) *Session {
	ev := expr.New(r, b.Seed, expr.WithLogger(log))
	ev.SetTable("body", b.Vars())
	return &Session{
		Seed:  b.Seed,
		Rand:  r,
		Body:  b,
		Eval:  ev,
		Stack: &terrain.Stack{},
	}
}

// usePreset exposes p to parameter expressions.
func (s *Session) usePreset(p preset.Preset) {
	s.Eval.SetTable("preset", map[string]any{
		"name":      p.Name,
		"minRadius": p.MinRadius,
		"maxRadius": p.MaxRadius,
	})
}

// reconciler returns a reconciler resolving parameters through the session.
func (s *Session) reconciler(log *slog.Logger) *terrain.Reconciler {
	return &terrain.Reconciler{Resolver: s.Eval, Log: log}
}
