package usage

import (
	"fmt"
	"path/filepath"

	"github.com/cleared-dev/acctsplit/internal/model"
	"github.com/cleared-dev/acctsplit/internal/records"
)

// Consumer is one distinct object name using an account, with the record
// files it was seen in.
type Consumer struct {
	Name  string
	Files []string
}

func (c *Consumer) addFile(file string) {
	for _, f := range c.Files {
		if f == file {
			return
		}
	}
	c.Files = append(c.Files, file)
}

// Usage is every consumer of one canonical key, in first-seen order.
type Usage struct {
	Key       string
	Consumers []*Consumer
}

// Names returns the consumer names.
func (u *Usage) Names() []string {
	names := make([]string, len(u.Consumers))
	for i, c := range u.Consumers {
		names[i] = c.Name
	}
	return names
}

// Report is the result of a usage scan.
type Report struct {
	order     []string
	byKey     map[string]*Usage
	matches   []string
	matchSeen map[string]bool
}

func newReport() *Report {
	return &Report{
		byKey:     make(map[string]*Usage),
		matchSeen: make(map[string]bool),
	}
}

// Scan records, per canonical key, the distinct objects that reference it.
// References to accounts that are not placed in the hierarchy are ignored on
// purpose: only placed accounts can receive clones, so they are the only
// candidates for a conflict.
// An object is counted once per key however often it repeats the reference.
func Scan(cat *records.Catalog, r *Resolver) *Report {
	rep := newReport()
	for _, obj := range cat.Objects() {
		for _, ref := range obj.References {
			raw := ref.Value()
			key := r.ResolveKey(raw)
			if !r.Placed(key) {
				continue
			}
			rep.add(key, obj.Name, obj.File)
			rep.addMatch(fmt.Sprintf("%s %q", filepath.Base(obj.File), raw))
		}
	}
	return rep
}

func (rep *Report) add(key, name, file string) {
	nk := model.NormalizeKey(key)
	u, ok := rep.byKey[nk]
	if !ok {
		u = &Usage{Key: key}
		rep.byKey[nk] = u
		rep.order = append(rep.order, nk)
	}
	for _, c := range u.Consumers {
		if c.Name == name {
			c.addFile(file)
			return
		}
	}
	u.Consumers = append(u.Consumers, &Consumer{Name: name, Files: []string{file}})
}

func (rep *Report) addMatch(line string) {
	if rep.matchSeen[line] {
		return
	}
	rep.matchSeen[line] = true
	rep.matches = append(rep.matches, line)
}

// Keys returns every used canonical key in first-seen order.
func (rep *Report) Keys() []string {
	keys := make([]string, len(rep.order))
	for i, nk := range rep.order {
		keys[i] = rep.byKey[nk].Key
	}
	return keys
}

// Get returns the usage of key.
func (rep *Report) Get(key string) (*Usage, bool) {
	u, ok := rep.byKey[model.NormalizeKey(key)]
	return u, ok
}

// Conflicts returns the keys used by more than one distinct object.
func (rep *Report) Conflicts() []*Usage {
	var out []*Usage
	for _, nk := range rep.order {
		if u := rep.byKey[nk]; len(u.Consumers) > 1 {
			out = append(out, u)
		}
	}
	return out
}

// Matches returns one `file "reference"` line per distinct placed reference.
func (rep *Report) Matches() []string {
	return rep.matches
}
