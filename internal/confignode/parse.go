package confignode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrSyntax marks malformed documents.
var ErrSyntax = errors.New("config syntax error")

// Load parses the document stored at path.
func Load(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	root, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

// ParseString parses a document held in memory.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads a document and returns an unnamed root node holding the
// top-level values and nodes.
//
// The grammar is line oriented: "key = value" lines add values, a bare name
// followed by "{" (on the same or the next line) opens a node and "}" closes
// it. Text after "//" is ignored.
func Parse(r io.Reader) (*Node, error) {
	root := New("")
	stack := []*Node{root}
	pending := ""
	havePending := false

	top := func() *Node { return stack[len(stack)-1] }

	flush := func(text string, line int) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		if havePending {
			return fmt.Errorf("line %d: node %q has no body: %w", line, pending, ErrSyntax)
		}
		if k, v, ok := strings.Cut(text, "="); ok {
			top().AddValue(strings.TrimSpace(k), strings.TrimSpace(v))
			return nil
		}
		pending, havePending = text, true
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}

		var cur strings.Builder
		for _, ch := range text {
			switch ch {
			case '{':
				name := strings.TrimSpace(cur.String())
				cur.Reset()
				if name == "" {
					if !havePending {
						return nil, fmt.Errorf("line %d: unnamed node: %w", line, ErrSyntax)
					}
					name = pending
				} else if havePending {
					return nil, fmt.Errorf("line %d: node %q has no body: %w", line, pending, ErrSyntax)
				}
				pending, havePending = "", false
				child := top().AddNode(New(name))
				stack = append(stack, child)
			case '}':
				if err := flush(cur.String(), line); err != nil {
					return nil, err
				}
				cur.Reset()
				if havePending {
					return nil, fmt.Errorf("line %d: node %q has no body: %w", line, pending, ErrSyntax)
				}
				if len(stack) == 1 {
					return nil, fmt.Errorf("line %d: unbalanced '}': %w", line, ErrSyntax)
				}
				stack = stack[:len(stack)-1]
			default:
				cur.WriteRune(ch)
			}
		}
		if err := flush(cur.String(), line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if havePending {
		return nil, fmt.Errorf("node %q has no body: %w", pending, ErrSyntax)
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("node %q is not closed: %w", top().Name, ErrSyntax)
	}
	return root, nil
}
