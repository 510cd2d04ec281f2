package runlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tag classifies one processing-log line.
type Tag string

const (
	TagRun      Tag = "RUN"
	TagConflict Tag = "CONFLICT"
	TagClone    Tag = "CLONE"
	TagTree     Tag = "TREE"
	TagRewrite  Tag = "REWRITE"
	TagError    Tag = "ERROR"
)

// Entry is one line of the processing log.
type Entry struct {
	Tag     Tag
	Message string
}

// Run marks the start of a run.
func Run(runID string) Entry {
	return Entry{Tag: TagRun, Message: runID + " started"}
}

// Conflict records a key used by more than one object.
func Conflict(key string, names []string) Entry {
	return Entry{Tag: TagConflict, Message: fmt.Sprintf("%s used by: %s", key, strings.Join(names, ", "))}
}

// Clone records a newly minted definition.
func Clone(newLine, origLine string) Entry {
	return Entry{Tag: TagClone, Message: fmt.Sprintf("%s from %s", newLine, origLine)}
}

// Tree records a clone attached under a parent account.
func Tree(newID, parentKey string) Entry {
	return Entry{Tag: TagTree, Message: fmt.Sprintf("Added %s under %s", newID, parentKey)}
}

// Rewrite records a record file whose reference now points at the clone.
func Rewrite(key, newID, file string) Entry {
	return Entry{Tag: TagRewrite, Message: fmt.Sprintf("%s → %s in %s", key, newID, file)}
}

// Errorf records a failure that did not stop the run.
func Errorf(format string, args ...any) Entry {
	return Entry{Tag: TagError, Message: fmt.Sprintf(format, args...)}
}

// MarshalEntry formats an entry as "[TAG] message".
func MarshalEntry(e Entry) string {
	return "[" + string(e.Tag) + "] " + e.Message
}

// UnmarshalEntry parses a "[TAG] message" line.
func UnmarshalEntry(line string) (Entry, error) {
	if !strings.HasPrefix(line, "[") {
		return Entry{}, fmt.Errorf("missing tag in %q", line)
	}
	tag, msg, ok := strings.Cut(line[1:], "] ")
	if !ok || tag == "" {
		return Entry{}, fmt.Errorf("missing tag in %q", line)
	}
	return Entry{Tag: Tag(tag), Message: msg}, nil
}

// Writer appends entries to a processing log.
type Writer struct {
	w      *bufio.Writer
	counts map[Tag]int
	err    error
}

// NewWriter creates a Writer over w. Call Flush before closing w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), counts: make(map[Tag]int)}
}

// Write appends one entry. After the first write error every later write is
// dropped and the error is returned again.
func (lw *Writer) Write(e Entry) error {
	if lw.err != nil {
		return lw.err
	}
	if _, err := lw.w.WriteString(MarshalEntry(e) + "\n"); err != nil {
		lw.err = fmt.Errorf("writing processing log: %w", err)
		return lw.err
	}
	lw.counts[e.Tag]++
	return nil
}

// Count returns how many entries with tag were written.
func (lw *Writer) Count(tag Tag) int {
	return lw.counts[tag]
}

// Flush writes buffered entries to the underlying writer.
func (lw *Writer) Flush() error {
	if lw.err != nil {
		return lw.err
	}
	if err := lw.w.Flush(); err != nil {
		return fmt.Errorf("flushing processing log: %w", err)
	}
	return nil
}

// Read returns all entries of the processing log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening processing log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		e, err := UnmarshalEntry(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading processing log: %w", err)
	}
	return entries, nil
}

// Count returns how many entries carry tag.
func Count(entries []Entry, tag Tag) int {
	n := 0
	for _, e := range entries {
		if e.Tag == tag {
			n++
		}
	}
	return n
}
