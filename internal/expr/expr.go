// Package expr evaluates the free-form parameter expressions embedded in mod
// declarations. Evaluation is best effort: anything that cannot be reduced to a
// single number, string or boolean comes back as the original text.
package expr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stellarator/internal/confignode"
	"stellarator/internal/core"
	rng "stellarator/pkg/core"
)

// Kind tells which branch an evaluation took.
type Kind int

const (
	// Literal means the input text is used unchanged.
	Literal Kind = iota
	// Evaluated means the text was reduced to a value.
	Evaluated
	// Structured means a child node is handed through untouched.
	Structured
)

func (k Kind) String() string {
	switch k {
	case Evaluated:
		return "evaluated"
	case Structured:
		return "structured"
	default:
		return "literal"
	}
}

// Result is the outcome of resolving one parameter.
type Result struct {
	Kind  Kind
	Value core.Value
	// Err explains why a Literal fallback happened.
	Err error
}

var (
	errMultiple    = errors.New("expression yields no single value")
	errUnsupported = errors.New("unsupported result type")
	errNotFinite   = errors.New("non-finite number")
)

// Evaluator owns one Lua state bound to a generation session.
type Evaluator struct {
	l      *lua.State
	rand   rng.Random
	log    *slog.Logger
	color  string
	strict bool
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

// WithLogger routes literal fallbacks to log.
func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// New creates an evaluator. r backs the random helpers, the random color and
// {min, max} ranges; it is the session's shared source.
func New(r rng.Random, seed int64, opts ...Option) *Evaluator {
	e := &Evaluator{l: lua.NewState(), rand: r, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	lua.OpenLibraries(e.l)
	for _, lib := range []string{"io", "os", "package", "require", "dofile", "loadfile", "debug", "rawset"} {
		e.l.PushNil()
		e.l.SetGlobal(lib)
	}
	// math.random would bypass the session source.
	e.l.Global("math")
	e.l.PushNil()
	e.l.SetField(-2, "random")
	e.l.PushNil()
	e.l.SetField(-2, "randomseed")
	e.l.Pop(1)

	e.l.PushNumber(float64(seed))
	e.l.SetGlobal("seed")
	e.registerRandom()
	e.SetTable("body", nil)
	e.SetTable("preset", nil)
	e.installStrictGlobals()
	return e
}

// SetTable publishes fields as a read-only table global; assigning to one of
// its fields raises an error. Supported field types are float64, int, int64,
// string and bool.
func (e *Evaluator) SetTable(name string, fields map[string]any) {
	l := e.l
	if e.strict {
		l.Field(lua.RegistryIndex, globalsKey)
	} else {
		l.PushGlobalTable()
	}
	l.PushString(name)
	l.NewTable()
	for k, v := range fields {
		switch v := v.(type) {
		case float64:
			l.PushNumber(v)
		case int:
			l.PushNumber(float64(v))
		case int64:
			l.PushNumber(float64(v))
		case string:
			l.PushString(v)
		case bool:
			l.PushBoolean(v)
		default:
			continue
		}
		l.SetField(-2, k)
	}
	protect(l, name)
	l.RawSet(-3)
	l.Pop(1)
}

// protect replaces the table on top of the stack with an empty proxy that
// reads through to it and rejects writes. The proxy's metatable is hidden from
// getmetatable and setmetatable.
func protect(l *lua.State, name string) {
	l.NewTable()
	l.NewTable()
	l.PushValue(-3)
	l.SetField(-2, "__index")
	l.PushGoFunction(func(l *lua.State) int {
		key, _ := l.ToString(2)
		lua.Errorf(l, "cannot assign %s.%s", name, key)
		return 0
	})
	l.SetField(-2, "__newindex")
	l.PushBoolean(false)
	l.SetField(-2, "__metatable")
	l.SetMetaTable(-2)
	l.Remove(-2)
}

// plainTable reports whether the value at index is a table without a
// metatable.
func plainTable(l *lua.State, index int) bool {
	if !l.IsTable(index) {
		return false
	}
	if l.MetaTable(index) {
		l.Pop(1)
		return false
	}
	return true
}

func (e *Evaluator) registerRandom() {
	l := e.l
	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "range", Function: func(l *lua.State) int {
			min := lua.CheckNumber(l, 1)
			max := lua.CheckNumber(l, 2)
			l.PushNumber(rng.Range(e.rand, min, max))
			return 1
		}},
		{Name: "next", Function: func(l *lua.State) int {
			min := lua.CheckInteger(l, 1)
			max := lua.CheckInteger(l, 2)
			l.PushInteger(rng.Next(e.rand, min, max))
			return 1
		}},
		{Name: "bool", Function: func(l *lua.State) int {
			l.PushBoolean(rng.Chance(e.rand, lua.OptInteger(l, 1, 50)))
			return 1
		}},
		{Name: "float", Function: func(l *lua.State) int {
			l.PushNumber(e.rand.Float64())
			return 1
		}},
	}, 0)
	l.SetGlobal("random")
}

const globalsKey = "stellarator.globals"

// installStrictGlobals moves every global into a backing table kept in the
// registry and leaves the global table empty, so reads of unknown names and
// all global writes raise errors. Library tables are moved behind read-only
// proxies. "color" is served lazily so the draw only happens when an
// expression asks for it.
func (e *Evaluator) installStrictGlobals() {
	l := e.l
	l.PushGlobalTable()
	l.NewTable()
	var keys []string
	l.PushNil()
	for l.Next(-3) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			keys = append(keys, key)
			if key != "_G" && plainTable(l, -1) {
				protect(l, key)
			}
		}
		l.PushValue(-2)
		l.Insert(-2)
		l.RawSet(-4)
	}
	l.SetField(lua.RegistryIndex, globalsKey)
	for _, key := range keys {
		l.PushString(key)
		l.PushNil()
		l.RawSet(-3)
	}

	l.NewTable()
	l.PushGoFunction(func(l *lua.State) int {
		l.Field(lua.RegistryIndex, globalsKey)
		l.PushValue(2)
		l.RawGet(-2)
		if !l.IsNil(-1) {
			return 1
		}
		key, _ := l.ToString(2)
		if key == "color" {
			if e.color == "" {
				r, g, b := rng.Color(e.rand)
				e.color = fmt.Sprintf("RGBA(%d,%d,%d,255)", r, g, b)
			}
			l.PushString(e.color)
			return 1
		}
		lua.Errorf(l, "unknown identifier %s", key)
		return 0
	})
	l.SetField(-2, "__index")
	l.PushGoFunction(func(l *lua.State) int {
		key, _ := l.ToString(2)
		lua.Errorf(l, "cannot assign global %s", key)
		return 0
	})
	l.SetField(-2, "__newindex")
	l.SetMetaTable(-2)
	l.Pop(1)

	// The string metatable indexes the raw string library.
	l.PushString("")
	if l.MetaTable(-1) {
		l.PushBoolean(false)
		l.SetField(-2, "__metatable")
		l.Pop(1)
	}
	l.Pop(1)
	e.strict = true
}

// Eval evaluates text. Exactly one number, string or boolean result yields
// Evaluated; everything else yields Literal carrying text unchanged.
func (e *Evaluator) Eval(ctx context.Context, text string) Result {
	return e.evalParam(ctx, "", text)
}

func (e *Evaluator) evalParam(ctx context.Context, key, text string) Result {
	v, err := e.eval(text)
	if err != nil {
		e.fallback(ctx, key, text, err)
		return Result{Kind: Literal, Value: core.Text(text), Err: err}
	}
	return Result{Kind: Evaluated, Value: v}
}

func (e *Evaluator) eval(text string) (core.Value, error) {
	l := e.l
	l.SetTop(0)
	defer l.SetTop(0)
	e.color = ""

	src := strings.TrimSpace(text)
	if src == "" {
		return core.Value{}, errMultiple
	}
	if err := lua.LoadString(l, "return "+src); err != nil {
		l.SetTop(0)
		if err := lua.LoadString(l, src); err != nil {
			return core.Value{}, err
		}
	}
	if err := l.ProtectedCall(0, lua.MultipleReturns, 0); err != nil {
		return core.Value{}, err
	}
	if l.Top() != 1 {
		return core.Value{}, fmt.Errorf("%w: %d results", errMultiple, l.Top())
	}
	switch l.TypeOf(1) {
	case lua.TypeNumber:
		f, _ := l.ToNumber(1)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return core.Value{}, errNotFinite
		}
		return core.Number(f), nil
	case lua.TypeString:
		s, _ := l.ToString(1)
		return core.Text(s), nil
	case lua.TypeBoolean:
		return core.Bool(l.ToBoolean(1)), nil
	}
	return core.Value{}, fmt.Errorf("%w: %s", errUnsupported, lua.TypeNameOf(l, 1))
}

// Resolve turns a declared parameter into a value. Nodes holding min and max
// resolve to a uniform draw in [min, max); other nodes pass through; text is
// evaluated.
func (e *Evaluator) Resolve(ctx context.Context, key, text string, node *confignode.Node) Result {
	if node == nil {
		return e.evalParam(ctx, key, text)
	}
	minText, okMin := node.GetValue("min")
	maxText, okMax := node.GetValue("max")
	if !okMin || !okMax {
		return Result{Kind: Structured, Value: core.NodeValue(node)}
	}
	min, err := e.bound(minText)
	if err != nil {
		e.fallback(ctx, key, node.Name, err)
		return Result{Kind: Structured, Value: core.NodeValue(node), Err: err}
	}
	max, err := e.bound(maxText)
	if err != nil {
		e.fallback(ctx, key, node.Name, err)
		return Result{Kind: Structured, Value: core.NodeValue(node), Err: err}
	}
	return Result{Kind: Evaluated, Value: core.Number(rng.Range(e.rand, min, max))}
}

func (e *Evaluator) bound(text string) (float64, error) {
	if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
		return f, nil
	}
	v, err := e.eval(text)
	if err != nil {
		return 0, err
	}
	return v.Float()
}

func (e *Evaluator) fallback(ctx context.Context, key, text string, err error) {
	e.log.Debug("literal substitution", "param", key, "text", text, "reason", err)
	trace.SpanFromContext(ctx).AddEvent("literal substitution", trace.WithAttributes(
		attribute.String("param", key),
		attribute.String("text", text),
		attribute.String("reason", err.Error()),
	))
}
