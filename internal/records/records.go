package records

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Element names of the object record format.
const (
	tagObject    = "Object"
	tagName      = "Name"
	tagAccountID = "AccountID"
	tagAccount   = "Account"
	tagID        = "ID"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reference is one account reference held by an object, either a flat
// <AccountID> element or the <ID>/<Name> child of a nested <Account>.
type Reference struct {
	el *etree.Element
}

// Value returns the trimmed reference text.
func (r *Reference) Value() string {
	return strings.TrimSpace(r.el.Text())
}

// Set replaces the reference text in place.
func (r *Reference) Set(value string) {
	r.el.SetText(value)
}

// Object is one <Object> element of a record file.
type Object struct {
	Name       string
	File       string
	References []*Reference
}

// Document is one parsed record file.
type Document struct {
	Path    string
	Objects []*Object
	// Skipped counts <Object> elements without a name or reference.
	Skipped int

	doc *etree.Document
}

// Open reads and parses the record file at path.
func Open(path string) (*Document, error) {
	d := &Document{Path: path}
	if err := d.read(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) read() error {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("reading record %s: %w", d.Path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return fmt.Errorf("parsing record %s: %w", d.Path, err)
	}
	if doc.Root() == nil {
		return fmt.Errorf("parsing record %s: no root element", d.Path)
	}

	d.doc = doc
	d.Objects = nil
	d.Skipped = 0
	for _, el := range doc.FindElements("//" + tagObject) {
		obj := parseObject(el, d.Path)
		if obj == nil {
			d.Skipped++
			continue
		}
		d.Objects = append(d.Objects, obj)
	}
	return nil
}

func parseObject(el *etree.Element, file string) *Object {
	nameEl := el.SelectElement(tagName)
	if nameEl == nil {
		return nil
	}
	name := strings.TrimSpace(nameEl.Text())
	if name == "" {
		return nil
	}

	obj := &Object{Name: name, File: file}
	for _, ref := range el.SelectElements(tagAccountID) {
		obj.addReference(ref)
	}
	for _, acct := range el.SelectElements(tagAccount) {
		ref := acct.SelectElement(tagID)
		if ref == nil {
			ref = acct.SelectElement(tagName)
		}
		if ref != nil {
			obj.addReference(ref)
		}
	}
	if len(obj.References) == 0 {
		return nil
	}
	return obj
}

func (o *Object) addReference(el *etree.Element) {
	if strings.TrimSpace(el.Text()) == "" {
		return
	}
	o.References = append(o.References, &Reference{el: el})
}

// Save writes the document back to its file. Content goes to a temporary
// file in the same directory which is then renamed over the original, so a
// failed save leaves the original untouched. No byte-order mark is written.
func (d *Document) Save() error {
	var buf bytes.Buffer
	if _, err := d.doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("serializing record %s: %w", d.Path, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(d.Path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.Path), "."+filepath.Base(d.Path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", d.Path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing record %s: %w", d.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing record %s: %w", d.Path, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("writing record %s: %w", d.Path, err)
	}
	if err := os.Rename(tmpPath, d.Path); err != nil {
		return fmt.Errorf("replacing record %s: %w", d.Path, err)
	}
	return nil
}

// Revert discards in-memory edits by parsing the file again.
func (d *Document) Revert() error {
	return d.read()
}

// Catalog is every record document of a directory, in lexical file order.
type Catalog struct {
	Docs []*Document
}

// LoadDir parses every file in dir whose name matches pattern (compared
// case-insensitively). A file that cannot be read or parsed is passed to
// onError and left out of the catalog.
func LoadDir(dir, pattern string, onError func(path string, err error)) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading records dir: %w", err)
	}

	pattern = strings.ToLower(pattern)
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, strings.ToLower(e.Name()))
		if err != nil {
			return nil, fmt.Errorf("matching record pattern %q: %w", pattern, err)
		}
		if ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	c := &Catalog{}
	for _, p := range paths {
		doc, err := Open(p)
		if err != nil {
			if onError != nil {
				onError(p, err)
			}
			continue
		}
		c.Docs = append(c.Docs, doc)
	}
	return c, nil
}

// Document returns the catalog entry for path.
func (c *Catalog) Document(path string) (*Document, bool) {
	for _, d := range c.Docs {
		if d.Path == path {
			return d, true
		}
	}
	return nil, false
}

// Objects returns every object of every document in catalog order.
func (c *Catalog) Objects() []*Object {
	var out []*Object
	for _, d := range c.Docs {
		out = append(out, d.Objects...)
	}
	return out
}
