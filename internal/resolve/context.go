package resolve

import (
	"github.com/rs/zerolog"

	"github.com/cleared-dev/acctsplit/internal/accounts"
	"github.com/cleared-dev/acctsplit/internal/records"
	"github.com/cleared-dev/acctsplit/internal/usage"
)

// Saver persists a rewritten record document.
type Saver interface {
	Save(doc *records.Document) error
}

// SaverFunc adapts a function to a Saver.
type SaverFunc func(doc *records.Document) error

// Save calls f(doc).
func (f SaverFunc) Save(doc *records.Document) error { return f(doc) }

// DocumentSaver writes documents back to their own files.
var DocumentSaver = SaverFunc(func(doc *records.Document) error { return doc.Save() })

// NoopSaver discards rewrites.
var NoopSaver = SaverFunc(func(*records.Document) error { return nil })

// Context is everything one run reads and mutates. It is built once per run
// and owned by the resolver.
type Context struct {
	Defs    *accounts.Index
	Keys    *usage.Resolver
	Usage   *usage.Report
	Catalog *records.Catalog
	Out     *Outputs
	Saver   Saver
	Logger  zerolog.Logger

	// emitted holds every clone line written this run.
	emitted map[string]bool
}

// NewContext assembles a Context. A nil saver writes documents to disk.
func NewContext(defs *accounts.Index, keys *usage.Resolver, rep *usage.Report, cat *records.Catalog, out *Outputs, saver Saver, logger zerolog.Logger) *Context {
	if saver == nil {
		saver = DocumentSaver
	}
	return &Context{
		Defs:    defs,
		Keys:    keys,
		Usage:   rep,
		Catalog: cat,
		Out:     out,
		Saver:   saver,
		Logger:  logger,
		emitted: make(map[string]bool),
	}
}
