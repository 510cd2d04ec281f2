package accounts

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/acctsplit/internal/model"
)

// minLineLen is the shortest line that can carry a direction, a type and an id.
const minLineLen = 4

// ParseLine parses one definition line:
//
//	<+|-><2-letter type><id><modifiers?> <caption>
//
// Lines that do not have this shape are reported with ok=false, never as an
// error. The same grammar is used for hierarchy lines.
func ParseLine(line string) (def model.Definition, ok bool) {
	line = strings.TrimRight(line, " \t\r\n")
	if len(line) < minLineLen {
		return model.Definition{}, false
	}

	dir := model.Direction(line[0])
	if dir != model.DirectionDebit && dir != model.DirectionCredit {
		return model.Definition{}, false
	}

	i := 3
	for i < len(line) && !isSpace(line[i]) && !model.IsModifier(line[i]) {
		i++
	}
	id := line[3:i]
	if id == "" {
		return model.Definition{}, false
	}

	j := i
	for j < len(line) && model.IsModifier(line[j]) {
		j++
	}

	return model.Definition{
		Direction: dir,
		Type:      model.ParseAccountType(line[1:3]),
		ID:        id,
		Modifiers: line[i:j],
		Caption:   strings.TrimSpace(line[j:]),
		RawLine:   line,
	}, true
}

// ExtractModifiers returns the modifier run that follows the id of a raw
// definition line, or "" when the line does not parse.
func ExtractModifiers(line string) string {
	def, ok := ParseLine(line)
	if !ok {
		return ""
	}
	return def.Modifiers
}

// ReadDefinitions reads every well-formed definition from r in file order.
// Malformed lines are dropped.
func ReadDefinitions(r io.Reader) ([]model.Definition, error) {
	var defs []model.Definition
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if def, ok := ParseLine(sc.Text()); ok {
			defs = append(defs, def)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}
	return defs, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
