package terrain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stellarator/internal/confignode"
	"stellarator/internal/core"
	"stellarator/internal/expr"
)

var (
	// ErrBadIndex marks a declaration whose index is not an integer.
	ErrBadIndex = errors.New("malformed index")
	// ErrUnknownType marks a declaration whose type is not registered.
	ErrUnknownType = errors.New("unknown mod type")
)

// Resolver turns declared parameter text into values.
type Resolver interface {
	Resolve(ctx context.Context, key, text string, node *confignode.Node) expr.Result
}

// Action is what reconciliation did with one declaration.
type Action int

const (
	Patched Action = iota
	Created
	SkippedUnknownType
	SkippedBadIndex
)

func (a Action) String() string {
	switch a {
	case Patched:
		return "patched"
	case Created:
		return "created"
	case SkippedUnknownType:
		return "skipped-unknown-type"
	case SkippedBadIndex:
		return "skipped-bad-index"
	}
	return "unknown"
}

// ParamError records a parameter that could not be applied.
type ParamError struct {
	Key string
	Err error
}

// Outcome reports how one declaration was handled.
type Outcome struct {
	Decl   Declaration
	Action Action
	// Mod is the instance patched or created; nil when skipped.
	Mod core.Mod
	// Err is set for skipped declarations.
	Err         error
	ParamErrors []ParamError
	// Literals lists parameters whose text was applied unevaluated.
	Literals []string
}

// Report collects the outcomes of one reconciliation pass in declaration order.
type Report struct {
	Outcomes []Outcome
}

// Count returns the number of outcomes with the given action.
func (r *Report) Count(a Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}

// Literals returns the number of parameters applied as unevaluated text.
func (r *Report) Literals() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Literals)
	}
	return n
}

// Reconciler merges declarations into stacks.
type Reconciler struct {
	Resolver Resolver
	Log      *slog.Logger
}

// patchedSet holds the instances consumed by one pass.
type patchedSet map[core.Mod]struct{}

func (p patchedSet) has(m core.Mod) bool {
	_, ok := p[m]
	return ok
}

// Reconcile applies decls to stack in order. For each declaration it patches
// the first unpatched instance of the same type that satisfies the optional
// name and index constraints, or appends a new instance when none does.
// Unknown types and malformed indices skip the declaration; nothing here is
// fatal for the body.
func (r *Reconciler) Reconcile(ctx context.Context, stack *Stack, decls []Declaration) *Report {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	span := trace.SpanFromContext(ctx)
	patched := patchedSet{}
	report := &Report{Outcomes: make([]Outcome, 0, len(decls))}

	for _, d := range decls {
		out := Outcome{Decl: d}
		mt, ok := core.Lookup(d.Type)
		if !ok {
			out.Action = SkippedUnknownType
			out.Err = fmt.Errorf("%s: %w", d.Type, ErrUnknownType)
			log.Info("skip declaration", "type", d.Type, "name", d.Name, "reason", "unknown type")
			span.AddEvent("skip declaration", trace.WithAttributes(
				attribute.String("type", d.Type),
				attribute.String("reason", "unknown type"),
			))
			report.Outcomes = append(report.Outcomes, out)
			continue
		}

		index := -1
		if d.HasIndex {
			i, err := strconv.Atoi(strings.TrimSpace(d.Index))
			if err != nil {
				out.Action = SkippedBadIndex
				out.Err = fmt.Errorf("%s index %q: %w", d.Type, d.Index, ErrBadIndex)
				log.Warn("skip declaration", "type", d.Type, "name", d.Name, "index", d.Index, "reason", "malformed index")
				span.AddEvent("skip declaration", trace.WithAttributes(
					attribute.String("type", d.Type),
					attribute.String("index", d.Index),
					attribute.String("reason", "malformed index"),
				))
				report.Outcomes = append(report.Outcomes, out)
				continue
			}
			index = i
		}

		m := match(stack.OfType(d.Type), d, index, patched)
		if m != nil {
			out.Action = Patched
		} else {
			m = mt.New()
			if d.HasName {
				m.SetName(d.Name)
			}
			stack.Append(m)
			out.Action = Created
		}
		patched[m] = struct{}{}
		out.Mod = m
		r.apply(ctx, log, mt, m, d, &out)
		log.Debug("reconciled", "type", d.Type, "name", m.Name(), "action", out.Action.String())
		report.Outcomes = append(report.Outcomes, out)
	}
	return report
}

// match finds the first unpatched candidate satisfying the declaration's
// identity constraints. With an index, the position is counted among the
// same-type instances whose name equals the declared name.
func match(candidates []core.Mod, d Declaration, index int, patched patchedSet) core.Mod {
	pos := 0
	for _, m := range candidates {
		if (d.HasName || d.HasIndex) && m.Name() != d.Name {
			continue
		}
		if d.HasIndex {
			if pos != index {
				pos++
				continue
			}
			pos++
		}
		if patched.has(m) {
			continue
		}
		return m
	}
	return nil
}

func (r *Reconciler) apply(ctx context.Context, log *slog.Logger, mt core.ModType, m core.Mod, d Declaration, out *Outcome) {
	for _, p := range d.Params {
		var res expr.Result
		if r.Resolver != nil {
			res = r.Resolver.Resolve(ctx, p.Key, p.Text, p.Node)
		} else if p.Node != nil {
			res = expr.Result{Kind: expr.Structured, Value: core.NodeValue(p.Node)}
		} else {
			res = expr.Result{Kind: expr.Literal, Value: core.Text(p.Text)}
		}
		if res.Kind == expr.Literal && res.Err != nil {
			out.Literals = append(out.Literals, p.Key)
		}
		if err := mt.Apply(m, p.Key, res.Value); err != nil {
			out.ParamErrors = append(out.ParamErrors, ParamError{Key: p.Key, Err: err})
			log.Warn("param not applied", "type", d.Type, "name", m.Name(), "param", p.Key, "reason", err)
		}
	}
}

// Build reconciles decls onto an empty stack.
func (r *Reconciler) Build(ctx context.Context, decls []Declaration) (*Stack, *Report) {
	s := &Stack{}
	rep := r.Reconcile(ctx, s, decls)
	return s, rep
}
