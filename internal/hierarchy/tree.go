package hierarchy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cleared-dev/acctsplit/internal/accounts"
	"github.com/cleared-dev/acctsplit/internal/model"
)

// NoParent marks a root node.
const NoParent = -1

// Node is one account line placed in the hierarchy.
type Node struct {
	Def      model.Definition
	Depth    int // count of leading whitespace characters
	Parent   int // index into Tree.Nodes, NoParent for roots
	Children []int
}

// Tree is an arena of hierarchy nodes addressed by index.
type Tree struct {
	nodes []Node
	roots []int
	byKey map[string][]int
}

// Parse reads a hierarchy file. Every line whose trimmed form starts with '+'
// becomes a node; nesting is taken from leading whitespace. Other lines are
// ignored.
func Parse(r io.Reader) (*Tree, error) {
	t := &Tree{byKey: make(map[string][]int)}

	// Open ancestors, innermost last.
	var stack []int

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "+") {
			continue
		}
		def, ok := accounts.ParseLine(trimmed)
		if !ok {
			continue
		}
		depth := len(line) - len(trimmed)

		for len(stack) > 0 && t.nodes[stack[len(stack)-1]].Depth >= depth {
			stack = stack[:len(stack)-1]
		}

		idx := len(t.nodes)
		parent := NoParent
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
			t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
		} else {
			t.roots = append(t.roots, idx)
		}
		t.nodes = append(t.nodes, Node{Def: def, Depth: depth, Parent: parent})

		key := model.NormalizeKey(def.Key())
		t.byKey[key] = append(t.byKey[key], idx)
		stack = append(stack, idx)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading hierarchy: %w", err)
	}
	return t, nil
}

// Load reads the hierarchy file at path.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hierarchy: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing hierarchy %s: %w", path, err)
	}
	return t, nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node at index i.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// Roots returns the indexes of top-level nodes.
func (t *Tree) Roots() []int { return t.roots }

// Find returns every node placed for key. An account may appear more than
// once in a hierarchy.
func (t *Tree) Find(key string) []int {
	return t.byKey[model.NormalizeKey(key)]
}

// Children returns the child keys of every placement of key, in file order.
func (t *Tree) Children(key string) []model.Definition {
	var out []model.Definition
	for _, i := range t.Find(key) {
		for _, c := range t.nodes[i].Children {
			out = append(out, t.nodes[c].Def)
		}
	}
	return out
}

// Descendants maps each key below key (key included when it has children) to
// its children. Each key is expanded once, so repeated placements cannot loop.
func (t *Tree) Descendants(key string) map[string][]model.Definition {
	result := make(map[string][]model.Definition)
	visited := make(map[string]bool)

	var walk func(k string)
	walk = func(k string) {
		nk := model.NormalizeKey(k)
		if visited[nk] {
			return
		}
		visited[nk] = true

		children := t.Children(k)
		if len(children) == 0 {
			return
		}
		result[k] = children
		for _, c := range children {
			walk(c.Key())
		}
	}
	walk(key)
	return result
}

// WriteSubtree writes key and everything below it, indenting two spaces per
// level. Each key is expanded once.
func (t *Tree) WriteSubtree(w io.Writer, key string) error {
	nodes := t.Find(key)
	if len(nodes) == 0 {
		return fmt.Errorf("account %s is not in the hierarchy", key)
	}
	visited := make(map[string]bool)
	return t.writeNode(w, nodes[0], "", visited)
}

func (t *Tree) writeNode(w io.Writer, i int, indent string, visited map[string]bool) error {
	n := t.nodes[i]
	if _, err := fmt.Fprintf(w, "%s%s\n", indent, n.Def.RawLine); err != nil {
		return err
	}
	nk := model.NormalizeKey(n.Def.Key())
	if visited[nk] {
		return nil
	}
	visited[nk] = true

	for _, j := range t.Find(n.Def.Key()) {
		for _, c := range t.nodes[j].Children {
			if err := t.writeNode(w, c, indent+"  ", visited); err != nil {
				return err
			}
		}
	}
	return nil
}
