package resolve

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cleared-dev/acctsplit/internal/accounts"
	"github.com/cleared-dev/acctsplit/internal/model"
	"github.com/cleared-dev/acctsplit/internal/runlog"
)

// LineWriter receives output lines one at a time.
type LineWriter interface {
	WriteLine(line string) error
}

// lines writes newline-terminated lines to w.
type lines struct {
	w io.Writer
}

func (l lines) WriteLine(line string) error {
	_, err := io.WriteString(l.w, line+"\n")
	return err
}

// NewLineWriter adapts an io.Writer to a LineWriter.
func NewLineWriter(w io.Writer) LineWriter {
	return lines{w: w}
}

// Outputs are the destinations a run writes to.
type Outputs struct {
	Definitions LineWriter // appended clone definitions
	Tree        LineWriter // parent line, then indented child line
	Created     LineWriter // every minted definition line
	Matches     LineWriter // `file "reference"` report
	Log         *runlog.Writer
	ChildIndent string

	closers   []func() error
	logCloser func() error
}

// WriteRelation appends one relation to the tree output.
func (o *Outputs) WriteRelation(rel model.Relation) error {
	if err := o.Tree.WriteLine(rel.Parent); err != nil {
		return err
	}
	return o.Tree.WriteLine(o.ChildIndent + rel.Child)
}

// Close flushes and closes every file opened for the outputs. It is safe to
// call on partially opened outputs. Data files are closed before the
// processing log so their flush failures are recorded in it.
func (o *Outputs) Close() error {
	var errs []error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil {
			errs = append(errs, err)
			if o.Log != nil {
				_ = o.Log.Write(runlog.Errorf("closing outputs: %v", err))
			}
		}
	}
	o.closers = nil

	if o.Log != nil {
		if err := o.Log.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if o.logCloser != nil {
		if err := o.logCloser(); err != nil {
			errs = append(errs, err)
		}
		o.logCloser = nil
	}
	return errors.Join(errs...)
}

// OutputPaths locates the files of a run.
type OutputPaths struct {
	Definitions string
	Tree        string
	Created     string
	Matches     string
	Log         string
}

// OpenOutputs opens every output file once for the whole run. Definitions,
// tree, created accounts and the processing log are appended to; the match
// report is rewritten. On error, files already opened are closed.
func OpenOutputs(p OutputPaths, childIndent string) (_ *Outputs, err error) {
	out := &Outputs{ChildIndent: childIndent}
	defer func() {
		if err != nil {
			_ = out.Close()
		}
	}()

	defs, err := accounts.OpenAppender(p.Definitions)
	if err != nil {
		return nil, err
	}
	out.closers = append(out.closers, defs.Close)
	out.Definitions = defs

	tree, err := openLineFile(p.Tree, os.O_APPEND)
	if err != nil {
		return nil, err
	}
	out.closers = append(out.closers, tree.Close)
	out.Tree = tree

	created, err := openLineFile(p.Created, os.O_APPEND)
	if err != nil {
		return nil, err
	}
	out.closers = append(out.closers, created.Close)
	out.Created = created

	matches, err := openLineFile(p.Matches, os.O_TRUNC)
	if err != nil {
		return nil, err
	}
	out.closers = append(out.closers, matches.Close)
	out.Matches = matches

	logFile, err := openLineFile(p.Log, os.O_APPEND)
	if err != nil {
		return nil, err
	}
	out.logCloser = logFile.Close
	out.Log = runlog.NewWriter(logFile.w)

	return out, nil
}

// DiscardOutputs writes the processing log to w and drops everything else.
func DiscardOutputs(w io.Writer, childIndent string) *Outputs {
	bw := bufio.NewWriter(w)
	return &Outputs{
		Definitions: NewLineWriter(io.Discard),
		Tree:        NewLineWriter(io.Discard),
		Created:     NewLineWriter(io.Discard),
		Matches:     NewLineWriter(io.Discard),
		Log:         runlog.NewWriter(bw),
		ChildIndent: childIndent,
		logCloser:   bw.Flush,
	}
}

type lineFile struct {
	f    *os.File
	w    *bufio.Writer
	path string
}

func openLineFile(path string, mode int) (*lineFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|mode, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &lineFile{f: f, w: bufio.NewWriter(f), path: path}, nil
}

func (l *lineFile) WriteLine(line string) error {
	if _, err := l.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing %s: %w", l.path, err)
	}
	return nil
}

func (l *lineFile) Close() error {
	flushErr := l.w.Flush()
	closeErr := l.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flushing %s: %w", l.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", l.path, closeErr)
	}
	return nil
}
