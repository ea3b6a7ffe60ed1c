package confignode

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Save writes the node's children and values to path. The node itself acts as
// the document root and is not written.
func (n *Node) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := n.WriteBody(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteBody writes the node's values and children without the node header.
func (n *Node) WriteBody(w io.Writer) error {
	bw := bufio.NewWriter(w)
	n.writeBody(bw, 0)
	return bw.Flush()
}

// String renders the node including its header.
func (n *Node) String() string {
	var sb strings.Builder
	bw := bufio.NewWriter(&sb)
	n.write(bw, 0)
	bw.Flush()
	return sb.String()
}

func (n *Node) write(w *bufio.Writer, depth int) {
	indent := strings.Repeat("\t", depth)
	w.WriteString(indent + n.Name + "\n")
	w.WriteString(indent + "{\n")
	n.writeBody(w, depth+1)
	w.WriteString(indent + "}\n")
}

func (n *Node) writeBody(w *bufio.Writer, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, v := range n.Values {
		w.WriteString(indent + v.Key + " = " + v.Value + "\n")
	}
	for _, c := range n.Nodes {
		c.write(w, depth)
	}
}
