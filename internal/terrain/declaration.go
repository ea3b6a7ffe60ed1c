// Package terrain holds the ordered mod stack of a body and the engine that
// merges declared mods into an existing stack.
package terrain

import (
	"stellarator/internal/confignode"
)

// Param is one declared parameter: raw text or a structured child node.
type Param struct {
	Key  string
	Text string
	Node *confignode.Node
}

// Declaration describes one mod a preset or template asks for.
type Declaration struct {
	Type     string
	Name     string
	HasName  bool
	Index    string
	HasIndex bool
	Params   []Param
}

// ParseDeclarations reads the children of a Mods node in document order. The
// "name" and "index" values form the identity constraints; every other value
// and every child node becomes a parameter.
func ParseDeclarations(mods *confignode.Node) []Declaration {
	if mods == nil {
		return nil
	}
	decls := make([]Declaration, 0, len(mods.Nodes))
	for _, n := range mods.Nodes {
		d := Declaration{Type: n.Name}
		for _, v := range n.Values {
			switch v.Key {
			case "name":
				d.Name, d.HasName = v.Value, true
			case "index":
				d.Index, d.HasIndex = v.Value, true
			default:
				d.Params = append(d.Params, Param{Key: v.Key, Text: v.Value})
			}
		}
		for _, c := range n.Nodes {
			d.Params = append(d.Params, Param{Key: c.Name, Node: c})
		}
		decls = append(decls, d)
	}
	return decls
}
