package accounts

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/cleared-dev/acctsplit/internal/model"
)

// Index provides in-memory lookup over the account definitions.
// The first definition of a key is authoritative; later duplicates are ignored.
type Index struct {
	defs       []model.Definition
	byKey      map[string]model.Definition
	triplicate map[string]model.TriplicateGroup
}

// NewIndex builds an Index from definitions in file order.
func NewIndex(defs []model.Definition) *Index {
	idx := &Index{
		byKey:      make(map[string]model.Definition, len(defs)),
		triplicate: make(map[string]model.TriplicateGroup),
	}
	for _, d := range defs {
		// Groups are keyed by id and modifiers, so a line shadowed by an
		// earlier key can still be the first of its group.
		idx.addToGroup(d)

		key := model.NormalizeKey(d.Key())
		if _, seen := idx.byKey[key]; seen {
			continue
		}
		idx.byKey[key] = d
		idx.defs = append(idx.defs, d)
	}
	return idx
}

func (idx *Index) addToGroup(d model.Definition) {
	if !d.Type.IsTriplicate() {
		return
	}
	gk := normalizeGroupKey(d.GroupKey())
	group, ok := idx.triplicate[gk]
	if !ok {
		group = make(model.TriplicateGroup)
		idx.triplicate[gk] = group
	}
	if _, taken := group[d.Type]; !taken {
		group[d.Type] = d
	}
}

// Load reads a definitions file and returns its Index.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening definitions: %w", err)
	}
	defer f.Close()

	defs, err := ReadDefinitions(f)
	if err != nil {
		return nil, fmt.Errorf("reading definitions %s: %w", path, err)
	}
	return NewIndex(defs), nil
}

// All returns the authoritative definitions in file order.
func (idx *Index) All() []model.Definition {
	return idx.defs
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.defs)
}

// Get returns the first definition for key, compared case-insensitively.
func (idx *Index) Get(key string) (model.Definition, bool) {
	d, ok := idx.byKey[model.NormalizeKey(key)]
	return d, ok
}

// Exists reports whether key has a definition.
func (idx *Index) Exists(key string) bool {
	_, ok := idx.byKey[model.NormalizeKey(key)]
	return ok
}

// Group returns the triplicate group for an id+modifiers key. An id without a
// group is not triplicate-eligible.
func (idx *Index) Group(groupKey string) (model.TriplicateGroup, bool) {
	g, ok := idx.triplicate[normalizeGroupKey(groupKey)]
	return g, ok
}

// Appender appends definition lines to a definitions file. It is opened once
// per run and must be closed to flush.
type Appender struct {
	f          *os.File
	w          *bufio.Writer
	eol        string
	needsBreak bool
}

// OpenAppender opens the definitions file at path for appending. A line
// break is written before the first appended line when the existing content
// does not end with one. CRLF files stay CRLF.
func OpenAppender(path string) (*Appender, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening definitions: %w", err)
	}

	eol := "\n"
	if bytes.Contains(existing, []byte("\r\n")) {
		eol = "\r\n"
	}
	return &Appender{
		f:          f,
		w:          bufio.NewWriter(f),
		eol:        eol,
		needsBreak: len(existing) > 0 && existing[len(existing)-1] != '\n',
	}, nil
}

// WriteLine appends one definition line.
func (a *Appender) WriteLine(line string) error {
	if a.needsBreak {
		if _, err := a.w.WriteString(a.eol); err != nil {
			return fmt.Errorf("appending definitions: %w", err)
		}
		a.needsBreak = false
	}
	if _, err := a.w.WriteString(line + a.eol); err != nil {
		return fmt.Errorf("appending definitions: %w", err)
	}
	return nil
}

// Close flushes pending lines and closes the file.
func (a *Appender) Close() error {
	flushErr := a.w.Flush()
	closeErr := a.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing definitions: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing definitions: %w", closeErr)
	}
	return nil
}

func normalizeGroupKey(gk string) string {
	return strings.ToLower(strings.TrimSpace(gk))
}
