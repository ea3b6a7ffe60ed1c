// Package confignode implements the hierarchical key/value documents used for
// preset libraries, templates and the generated system description.
//
// A document is a tree of named nodes. Each node holds an ordered list of
// key/value pairs and an ordered list of child nodes; neither keys nor child
// names have to be unique.
package confignode

// Value is one key/value pair of a node.
type Value struct {
	Key   string
	Value string
}

// Node is a named element of a document.
type Node struct {
	Name   string
	Values []Value
	Nodes  []*Node
}

// New returns an empty node with the given name.
func New(name string) *Node {
	return &Node{Name: name}
}

// AddValue appends a key/value pair and returns the node for chaining.
func (n *Node) AddValue(key, value string) *Node {
	n.Values = append(n.Values, Value{Key: key, Value: value})
	return n
}

// AddNode appends child and returns it.
func (n *Node) AddNode(child *Node) *Node {
	n.Nodes = append(n.Nodes, child)
	return child
}

// HasValue reports whether a value with the key exists.
func (n *Node) HasValue(key string) bool {
	_, ok := n.GetValue(key)
	return ok
}

// GetValue returns the first value stored under key.
func (n *Node) GetValue(key string) (string, bool) {
	for _, v := range n.Values {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// GetValues returns every value stored under key in document order.
func (n *Node) GetValues(key string) []string {
	var out []string
	for _, v := range n.Values {
		if v.Key == key {
			out = append(out, v.Value)
		}
	}
	return out
}

// GetNode returns the first child with the given name.
func (n *Node) GetNode(name string) *Node {
	for _, c := range n.Nodes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GetNodes returns every child with the given name in document order.
func (n *Node) GetNodes(name string) []*Node {
	var out []*Node
	for _, c := range n.Nodes {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Name: n.Name, Values: append([]Value(nil), n.Values...)}
	for _, child := range n.Nodes {
		c.Nodes = append(c.Nodes, child.Clone())
	}
	return c
}
