package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/acctsplit/internal/accounts"
	"github.com/cleared-dev/acctsplit/internal/id"
	"github.com/cleared-dev/acctsplit/internal/model"
	"github.com/cleared-dev/acctsplit/internal/runlog"
	"github.com/cleared-dev/acctsplit/internal/usage"
)

// Summary counts what a run did.
type Summary struct {
	Conflicts int
	Clones    int
	Relations int
	Rewrites  int
	Errors    int
}

func (s Summary) String() string {
	return fmt.Sprintf("Processing complete: %d conflicts, %d accounts created, %d tree relations, %d records rewritten, %d errors.",
		s.Conflicts, s.Clones, s.Relations, s.Rewrites, s.Errors)
}

// Resolve splits every account used by more than one object into one
// private account per object. Keys are processed in first-seen order; each
// key is independent of the others.
func Resolve(ctx *Context) Summary {
	var sum Summary
	for _, u := range ctx.Usage.Conflicts() {
		ctx.resolveKey(u, &sum)
	}
	return sum
}

// conflict is the per-key state shared by every consumer of the key.
type conflict struct {
	key       string
	orig      model.Definition
	accountID string
	group     model.TriplicateGroup
}

func (ctx *Context) resolveKey(u *usage.Usage, sum *Summary) {
	orig, ok := ctx.Defs.Get(u.Key)
	if !ok {
		ctx.Logger.Debug().Str("key", u.Key).Msg("Conflicted key has no definition, skipping")
		return
	}

	_, accountID := model.SplitKey(u.Key)
	mods := accounts.ExtractModifiers(orig.RawLine)
	group, _ := ctx.Defs.Group(accountID + mods)

	c := conflict{key: u.Key, orig: orig, accountID: accountID, group: group}

	sum.Conflicts++
	ctx.log(runlog.Conflict(u.Key, u.Names()), sum)

	for _, consumer := range u.Consumers {
		ctx.resolveConsumer(c, consumer, sum)
	}
}

func (ctx *Context) resolveConsumer(c conflict, consumer *usage.Consumer, sum *Summary) {
	newID := id.FormatCloneID(id.Initials(consumer.Name), c.accountID)
	newLine := id.FormatCloneLine(newID, c.orig.Suffix())

	ctx.emitClone(c, newID, newLine, sum)

	// Relations are deduplicated per consumer, not per key: a parent shared
	// by several consumers is written once for each of them.
	seen := make(map[model.Relation]bool)
	ctx.emitRelation(seen, c.orig, newID, newLine, sum)
	for _, t := range c.orig.Type.AttachParents() {
		parent, ok := c.group.Member(t)
		if !ok || strings.EqualFold(parent.Key(), c.orig.Key()) {
			continue
		}
		ctx.emitRelation(seen, parent, newID, newLine, sum)
	}

	ctx.rewrite(c.key, newID, consumer, sum)
}

func (ctx *Context) emitClone(c conflict, newID, newLine string, sum *Summary) {
	if ctx.emitted[newLine] {
		return
	}
	ctx.emitted[newLine] = true

	if ctx.Defs.Exists(newID) {
		ctx.Logger.Info().Str("account", newID).Msg("Clone already defined, not appending")
		return
	}

	if err := ctx.Out.Definitions.WriteLine(newLine); err != nil {
		ctx.fail(sum, "appending %s to definitions: %v", newLine, err)
		return
	}
	if err := ctx.Out.Created.WriteLine(newLine); err != nil {
		ctx.fail(sum, "recording created account %s: %v", newLine, err)
	}
	sum.Clones++
	ctx.log(runlog.Clone(newLine, strings.TrimSpace(c.orig.RawLine)), sum)
}

func (ctx *Context) emitRelation(seen map[model.Relation]bool, parent model.Definition, newID, newLine string, sum *Summary) {
	rel := model.Relation{Parent: strings.TrimSpace(parent.RawLine), Child: newLine}
	if seen[rel] {
		return
	}
	seen[rel] = true

	if err := ctx.Out.WriteRelation(rel); err != nil {
		ctx.fail(sum, "writing tree relation %s -> %s: %v", parent.Key(), newID, err)
		return
	}
	sum.Relations++
	ctx.log(runlog.Tree(newID, parent.Key()), sum)
}

// rewrite points every reference of the consumer's objects that resolves to
// key at newID. Each touched file is saved once; a file that cannot be saved
// keeps its original content.
func (ctx *Context) rewrite(key, newID string, consumer *usage.Consumer, sum *Summary) {
	target := model.NormalizeKey(key)
	for _, file := range consumer.Files {
		doc, ok := ctx.Catalog.Document(file)
		if !ok {
			continue
		}

		changed := false
		for _, obj := range doc.Objects {
			if obj.Name != consumer.Name {
				continue
			}
			for _, ref := range obj.References {
				if model.NormalizeKey(ctx.Keys.ResolveKey(ref.Value())) != target {
					continue
				}
				ref.Set(newID)
				changed = true
			}
		}
		if !changed {
			continue
		}

		if err := ctx.Saver.Save(doc); err != nil {
			ctx.fail(sum, "saving %s: %v", filepath.Base(file), err)
			if rerr := doc.Revert(); rerr != nil {
				ctx.Logger.Warn().Err(rerr).Str("file", file).Msg("Failed to reload record after save failure")
			}
			continue
		}
		sum.Rewrites++
		ctx.log(runlog.Rewrite(key, newID, filepath.Base(file)), sum)
	}
}

func (ctx *Context) log(e runlog.Entry, sum *Summary) {
	if err := ctx.Out.Log.Write(e); err != nil {
		// The processing log is gone; diagnostics are all that is left.
		ctx.Logger.Error().Err(err).Str("entry", runlog.MarshalEntry(e)).Msg("Failed to write processing log")
		sum.Errors++
	}
}

func (ctx *Context) fail(sum *Summary, format string, args ...any) {
	e := runlog.Errorf(format, args...)
	ctx.Logger.Error().Msg(e.Message)
	sum.Errors++
	ctx.log(e, sum)
}
