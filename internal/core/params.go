package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stellarator/internal/confignode"
)

// ErrUnknownParam is returned when a mod type has no setter for a key.
var ErrUnknownParam = errors.New("unknown parameter")

// ValueKind enumerates resolved parameter value kinds.
type ValueKind int

const (
	// ValueText is raw text, either a literal or an evaluated string.
	ValueText ValueKind = iota
	// ValueNumber is an evaluated number.
	ValueNumber
	// ValueBool is an evaluated boolean.
	ValueBool
	// ValueNode is a structured child node passed through unchanged.
	ValueNode
)

// Value is a resolved parameter value ready to be applied to a mod.
type Value struct {
	Kind ValueKind
	Text string
	Num  float64
	Bool bool
	Node *confignode.Node
}

// Text wraps raw text.
func Text(s string) Value { return Value{Kind: ValueText, Text: s} }

// Number wraps a number.
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// NodeValue wraps a structured node.
func NodeValue(n *confignode.Node) Value { return Value{Kind: ValueNode, Node: n} }

// String renders the value the way it would appear in a config document.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case ValueNode:
		if v.Node == nil {
			return ""
		}
		return v.Node.Name
	default:
		return v.Text
	}
}

// Float interprets the value as a number.
func (v Value) Float() (float64, error) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, nil
	case ValueBool:
		return 0, fmt.Errorf("boolean %v is not a number", v.Bool)
	case ValueNode:
		return 0, fmt.Errorf("node %q is not a number", v.String())
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", v.Text, err)
	}
	return f, nil
}

// Int interprets the value as an integer, truncating evaluated numbers.
func (v Value) Int() (int, error) {
	if v.Kind == ValueText {
		s := strings.TrimSpace(v.Text)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
	}
	f, err := v.Float()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// AsBool interprets the value as a boolean. Numbers are true when non-zero.
func (v Value) AsBool() (bool, error) {
	switch v.Kind {
	case ValueBool:
		return v.Bool, nil
	case ValueNumber:
		return v.Num != 0, nil
	case ValueNode:
		return false, fmt.Errorf("node %q is not a boolean", v.String())
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v.Text)))
	if err != nil {
		return false, fmt.Errorf("parse boolean %q: %w", v.Text, err)
	}
	return b, nil
}

// AsColor interprets the value as a color.
func (v Value) AsColor() (Color, error) {
	if v.Kind != ValueText {
		return Color{}, fmt.Errorf("value %q is not a color", v.String())
	}
	return ParseColor(v.Text)
}

// ParseColor accepts "RGBA(r,g,b,a)" with 0-255 channels, "#rrggbb[aa]" and
// "r,g,b[,a]" with 0-1 channels.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "RGBA(") && strings.HasSuffix(s, ")"):
		parts, err := splitFloats(s[len("RGBA(") : len(s)-1])
		if err != nil || len(parts) != 4 {
			return Color{}, fmt.Errorf("parse color %q: want RGBA(r,g,b,a)", s)
		}
		return Color{R: parts[0] / 255, G: parts[1] / 255, B: parts[2] / 255, A: parts[3] / 255}, nil
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return Color{}, fmt.Errorf("parse color %q: bad hex length", s)
		}
		if len(hex) == 6 {
			hex += "ff"
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		return Color{
			R: float64(n>>24&0xff) / 255,
			G: float64(n>>16&0xff) / 255,
			B: float64(n>>8&0xff) / 255,
			A: float64(n&0xff) / 255,
		}, nil
	}
	parts, err := splitFloats(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	switch len(parts) {
	case 3:
		return Color{R: parts[0], G: parts[1], B: parts[2], A: 1}, nil
	case 4:
		return Color{R: parts[0], G: parts[1], B: parts[2], A: parts[3]}, nil
	}
	return Color{}, fmt.Errorf("parse color %q: want 3 or 4 channels", s)
}

// FormatColor renders a color in the RGBA(r,g,b,a) form used by config files.
func FormatColor(c Color) string {
	n := c.NRGBA()
	return fmt.Sprintf("RGBA(%d,%d,%d,%d)", n.R, n.G, n.B, n.A)
}

func splitFloats(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Setter applies one resolved value onto a mod.
type Setter func(m Mod, v Value) error

// FloatParam builds a setter writing a float field of T.
func FloatParam[T Mod](field func(T) *float64) Setter {
	return func(m Mod, v Value) error {
		t, ok := m.(T)
		if !ok {
			return fmt.Errorf("mod %s does not accept this parameter", m.Type())
		}
		f, err := v.Float()
		if err != nil {
			return err
		}
		*field(t) = f
		return nil
	}
}

// IntParam builds a setter writing an int field of T.
func IntParam[T Mod](field func(T) *int) Setter {
	return func(m Mod, v Value) error {
		t, ok := m.(T)
		if !ok {
			return fmt.Errorf("mod %s does not accept this parameter", m.Type())
		}
		i, err := v.Int()
		if err != nil {
			return err
		}
		*field(t) = i
		return nil
	}
}

// BoolParam builds a setter writing a bool field of T.
func BoolParam[T Mod](field func(T) *bool) Setter {
	return func(m Mod, v Value) error {
		t, ok := m.(T)
		if !ok {
			return fmt.Errorf("mod %s does not accept this parameter", m.Type())
		}
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		*field(t) = b
		return nil
	}
}

// ColorParam builds a setter writing a color field of T.
func ColorParam[T Mod](field func(T) *Color) Setter {
	return func(m Mod, v Value) error {
		t, ok := m.(T)
		if !ok {
			return fmt.Errorf("mod %s does not accept this parameter", m.Type())
		}
		c, err := v.AsColor()
		if err != nil {
			return err
		}
		*field(t) = c
		return nil
	}
}

// NodeParam builds a setter handing a structured child node to T.
func NodeParam[T Mod](load func(T, *confignode.Node) error) Setter {
	return func(m Mod, v Value) error {
		t, ok := m.(T)
		if !ok {
			return fmt.Errorf("mod %s does not accept this parameter", m.Type())
		}
		if v.Kind != ValueNode || v.Node == nil {
			return fmt.Errorf("value %q is not a node", v.String())
		}
		return load(t, v.Node)
	}
}

var commonParams = map[string]Setter{
	"enabled": func(m Mod, v Value) error {
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		m.SetEnabled(b)
		return nil
	},
	"order": func(m Mod, v Value) error {
		i, err := v.Int()
		if err != nil {
			return err
		}
		m.SetOrder(i)
		return nil
	},
	"name": func(m Mod, v Value) error {
		m.SetName(v.String())
		return nil
	},
}

// Apply sets one parameter on m, consulting the type's table first and the
// parameters every mod shares second.
func (t ModType) Apply(m Mod, key string, v Value) error {
	if set, ok := t.Params[key]; ok {
		return set(m, v)
	}
	if set, ok := commonParams[key]; ok {
		return set(m, v)
	}
	return fmt.Errorf("%s.%s: %w", t.Name, key, ErrUnknownParam)
}
