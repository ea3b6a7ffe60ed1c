package terrain

import (
	"context"
	"errors"
	"testing"

	"stellarator/internal/confignode"
	"stellarator/internal/core"
	"stellarator/internal/expr"
	rng "stellarator/pkg/core"
)

type fooMod struct {
	core.ModBase
	X float64
}

func (m *fooMod) Type() string { return "Foo" }

type barMod struct {
	core.ModBase
	Y float64
}

func (m *barMod) Type() string { return "Bar" }

func init() {
	core.Register(core.ModType{
		Name: "Foo",
		New:  func() core.Mod { return &fooMod{ModBase: core.NewModBase()} },
		Params: map[string]core.Setter{
			"X": core.FloatParam(func(m *fooMod) *float64 { return &m.X }),
		},
	})
	core.Register(core.ModType{
		Name: "Bar",
		New:  func() core.Mod { return &barMod{ModBase: core.NewModBase()} },
		Params: map[string]core.Setter{
			"Y": core.FloatParam(func(m *barMod) *float64 { return &m.Y }),
		},
	})
}

func newReconciler() *Reconciler {
	return &Reconciler{Resolver: expr.New(rng.NewRNG(1), 1)}
}

func foo(name string) *fooMod {
	return &fooMod{ModBase: core.ModBase{ModName: name, ModEnabled: true}}
}

func decl(typ string, params ...string) Declaration {
	d := Declaration{Type: typ}
	for i := 0; i+1 < len(params); i += 2 {
		d.Params = append(d.Params, Param{Key: params[i], Text: params[i+1]})
	}
	return d
}

func TestPatchExistingInstance(t *testing.T) {
	existing := foo("")
	stack := &Stack{Mods: []core.Mod{existing}}
	rep := newReconciler().Reconcile(context.Background(), stack, []Declaration{decl("Foo", "X", "5")})
	if stack.Len() != 1 {
		t.Fatalf("expected no new instances, stack has %d", stack.Len())
	}
	if existing.X != 5 {
		t.Fatalf("expected X=5, got %v", existing.X)
	}
	if rep.Count(Patched) != 1 || rep.Outcomes[0].Mod != existing {
		t.Fatalf("unexpected report %+v", rep.Outcomes)
	}
}

func TestCreateAbsentType(t *testing.T) {
	stack := &Stack{Mods: []core.Mod{foo("")}}
	rep := newReconciler().Reconcile(context.Background(), stack, []Declaration{decl("Bar", "Y", "2")})
	if stack.Len() != 2 {
		t.Fatalf("expected one appended instance, stack has %d", stack.Len())
	}
	bar, ok := stack.Mods[1].(*barMod)
	if !ok || bar.Y != 2 {
		t.Fatalf("expected Bar with Y=2, got %#v", stack.Mods[1])
	}
	if rep.Count(Created) != 1 {
		t.Fatalf("unexpected report %+v", rep.Outcomes)
	}
}

func TestUnknownTypeSkipped(t *testing.T) {
	stack := &Stack{}
	rep := newReconciler().Reconcile(context.Background(), stack, []Declaration{decl("Nope", "X", "1"), decl("Bar")})
	if stack.Len() != 1 {
		t.Fatalf("expected only Bar to be created, got %d", stack.Len())
	}
	if rep.Outcomes[0].Action != SkippedUnknownType || !errors.Is(rep.Outcomes[0].Err, ErrUnknownType) {
		t.Fatalf("unexpected outcome %+v", rep.Outcomes[0])
	}
}

func TestBadIndexSkipped(t *testing.T) {
	existing := foo("")
	stack := &Stack{Mods: []core.Mod{existing}}
	d := decl("Foo", "X", "9")
	d.Index, d.HasIndex = "first", true
	rep := newReconciler().Reconcile(context.Background(), stack, []Declaration{d})
	if stack.Len() != 1 || existing.X != 0 {
		t.Fatalf("malformed index must not apply anything")
	}
	if !errors.Is(rep.Outcomes[0].Err, ErrBadIndex) || rep.Outcomes[0].Action != SkippedBadIndex {
		t.Fatalf("unexpected outcome %+v", rep.Outcomes[0])
	}
}

func TestNoDoublePatch(t *testing.T) {
	a, b := foo(""), foo("")
	stack := &Stack{Mods: []core.Mod{a, b}}
	decls := []Declaration{decl("Foo", "X", "1"), decl("Foo", "X", "2"), decl("Foo", "X", "3")}
	rep := newReconciler().Reconcile(context.Background(), stack, decls)
	if a.X != 1 || b.X != 2 {
		t.Fatalf("expected a=1 b=2, got %v %v", a.X, b.X)
	}
	if stack.Len() != 3 || stack.Mods[2].(*fooMod).X != 3 {
		t.Fatalf("third declaration should create a new instance")
	}
	seen := map[core.Mod]bool{}
	for _, o := range rep.Outcomes {
		if seen[o.Mod] {
			t.Fatalf("instance touched twice in one pass")
		}
		seen[o.Mod] = true
	}
	if want := 2 + rep.Count(Created); stack.Len() != want {
		t.Fatalf("stack length %d, want %d", stack.Len(), want)
	}
}

func TestMatchByName(t *testing.T) {
	a, b := foo("Hills"), foo("Mountains")
	stack := &Stack{Mods: []core.Mod{a, b}}
	d := decl("Foo", "X", "4")
	d.Name, d.HasName = "Mountains", true
	newReconciler().Reconcile(context.Background(), stack, []Declaration{d})
	if a.X != 0 || b.X != 4 || stack.Len() != 2 {
		t.Fatalf("name match failed: a=%v b=%v len=%d", a.X, b.X, stack.Len())
	}

	d.Name = "Craters"
	newReconciler().Reconcile(context.Background(), stack, []Declaration{d})
	if stack.Len() != 3 || stack.Mods[2].Name() != "Craters" {
		t.Fatalf("unmatched name should create a named instance")
	}
}

func TestMatchByIndexAndName(t *testing.T) {
	a, b, c := foo("N"), foo("Other"), foo("N")
	stack := &Stack{Mods: []core.Mod{a, b, c}}
	d := decl("Foo", "X", "7")
	d.Name, d.HasName = "N", true
	d.Index, d.HasIndex = "1", true
	newReconciler().Reconcile(context.Background(), stack, []Declaration{d})
	if c.X != 7 || a.X != 0 || b.X != 0 || stack.Len() != 3 {
		t.Fatalf("index 1 among N instances should be c: a=%v b=%v c=%v", a.X, b.X, c.X)
	}

	// Index without name only counts unnamed instances.
	d = decl("Foo", "X", "8")
	d.Index, d.HasIndex = "0", true
	newReconciler().Reconcile(context.Background(), stack, []Declaration{d})
	if stack.Len() != 4 {
		t.Fatalf("no unnamed instance exists, a new one must be created")
	}

	// Index past the end creates.
	d = decl("Foo", "X", "9")
	d.Name, d.HasName = "N", true
	d.Index, d.HasIndex = "2", true
	newReconciler().Reconcile(context.Background(), stack, []Declaration{d})
	if stack.Len() != 5 || a.X != 0 || c.X != 7 {
		t.Fatalf("out of range index must not patch existing instances")
	}
}

func TestIndexedCandidateAlreadyPatched(t *testing.T) {
	a := foo("N")
	stack := &Stack{Mods: []core.Mod{a}}
	first := decl("Foo", "X", "1")
	first.Name, first.HasName = "N", true
	second := first
	second.Index, second.HasIndex = "0", true
	second.Params = []Param{{Key: "X", Text: "2"}}
	newReconciler().Reconcile(context.Background(), stack, []Declaration{first, second})
	if a.X != 1 || stack.Len() != 2 {
		t.Fatalf("patched candidate must not be rematched: a=%v len=%d", a.X, stack.Len())
	}
}

func TestParamErrorsDoNotSkip(t *testing.T) {
	stack := &Stack{}
	rep := newReconciler().Reconcile(context.Background(), stack, []Declaration{decl("Foo", "X", "Rocky", "Z", "1")})
	o := rep.Outcomes[0]
	if o.Action != Created || len(o.ParamErrors) != 2 {
		t.Fatalf("unexpected outcome %+v", o)
	}
	if len(o.Literals) != 1 || o.Literals[0] != "X" {
		t.Fatalf("literal fallback not recorded: %v", o.Literals)
	}
	if rep.Literals() != 1 {
		t.Fatalf("report counts %d literals, want 1", rep.Literals())
	}
	if !errors.Is(o.ParamErrors[1].Err, core.ErrUnknownParam) {
		t.Fatalf("expected unknown param, got %v", o.ParamErrors[1].Err)
	}
}

func TestParseDeclarations(t *testing.T) {
	root, err := confignode.ParseString(`
Mods
{
	Foo
	{
		name = Hills
		index = 0
		X = 1 + 1
		Range
		{
			min = 1
			max = 2
		}
	}
	Bar
	{
	}
}
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	decls := ParseDeclarations(root.GetNode("Mods"))
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	d := decls[0]
	if d.Type != "Foo" || d.Name != "Hills" || !d.HasIndex || d.Index != "0" {
		t.Fatalf("unexpected identity %+v", d)
	}
	if len(d.Params) != 2 || d.Params[0].Text != "1 + 1" || d.Params[1].Node == nil {
		t.Fatalf("unexpected params %+v", d.Params)
	}
	stack := &Stack{Mods: []core.Mod{foo("Hills")}}
	newReconciler().Reconcile(context.Background(), stack, decls)
	if stack.Mods[0].(*fooMod).X != 2 {
		t.Fatalf("expression parameter not evaluated")
	}
}

func TestStackSetupDisablesFailures(t *testing.T) {
	stack := &Stack{Mods: []core.Mod{foo("a"), &failing{ModBase: core.NewModBase()}}}
	if err := stack.Setup(core.Sphere{Radius: 1}); err == nil {
		t.Fatalf("expected setup error")
	}
	if len(stack.Enabled()) != 1 {
		t.Fatalf("failing mod should be disabled")
	}
	if got := stack.Summary(); got != "Foo[a], Failing(disabled)" {
		t.Fatalf("summary %q", got)
	}
}

type failing struct{ core.ModBase }

func (f *failing) Type() string            { return "Failing" }
func (f *failing) Setup(core.Sphere) error { return errors.New("boom") }
