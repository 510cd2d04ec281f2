package resolve

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/cleared-dev/acctsplit/internal/accounts"
	"github.com/cleared-dev/acctsplit/internal/config"
	"github.com/cleared-dev/acctsplit/internal/hierarchy"
	"github.com/cleared-dev/acctsplit/internal/logging"
	"github.com/cleared-dev/acctsplit/internal/records"
	"github.com/cleared-dev/acctsplit/internal/runlog"
	"github.com/cleared-dev/acctsplit/internal/usage"
)

// Inputs locates the three inputs of a run.
type Inputs struct {
	HierarchyFile  string
	DefinitionsDir string
	RecordsDir     string
}

// Options controls where a run writes.
type Options struct {
	// OutputDir receives the tree, created-accounts, match and log outputs.
	// Defaults to the records directory.
	OutputDir string
	// DryRun detects and logs conflicts without writing any file; the
	// processing log goes to DryRunLog.
	DryRun    bool
	DryRunLog io.Writer
}

// Result is the outcome of a run.
type Result struct {
	RunID   string
	Summary Summary
}

// Analysis is the read-only part of a run: indexes and the usage scan.
type Analysis struct {
	Defs    *accounts.Index
	Tree    *hierarchy.Tree
	Placed  *hierarchy.Membership
	Keys    *usage.Resolver
	Catalog *records.Catalog
	Usage   *usage.Report
}

// Analyze loads definitions, hierarchy membership and records, then scans
// usage. Record files that cannot be loaded are passed to onRecordError.
func Analyze(in Inputs, cfg *config.Config, onRecordError func(path string, err error)) (*Analysis, error) {
	an, err := loadIndexes(in, cfg)
	if err != nil {
		return nil, err
	}
	if err := an.scan(in.RecordsDir, cfg.Files.Records, onRecordError); err != nil {
		return nil, err
	}
	return an, nil
}

func loadIndexes(in Inputs, cfg *config.Config) (*Analysis, error) {
	defs, err := accounts.Load(filepath.Join(in.DefinitionsDir, cfg.Files.Definitions))
	if err != nil {
		return nil, fmt.Errorf("loading definitions: %w", err)
	}
	tree, err := hierarchy.Load(in.HierarchyFile)
	if err != nil {
		return nil, fmt.Errorf("loading hierarchy: %w", err)
	}
	placed := hierarchy.NewMembership(tree, defs)
	return &Analysis{
		Defs:   defs,
		Tree:   tree,
		Placed: placed,
		Keys:   usage.NewResolver(defs, placed),
	}, nil
}

func (an *Analysis) scan(dir, pattern string, onRecordError func(path string, err error)) error {
	logger := logging.GetLogger("analyze")
	defer logging.LogOperationStart(logger, "scan")()

	cat, err := records.LoadDir(dir, pattern, onRecordError)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}
	an.Catalog = cat
	an.Usage = usage.Scan(cat, an.Keys)

	logger.Info().
		Int("definitions", an.Defs.Len()).
		Int("placed", an.Placed.Len()).
		Int("records", len(cat.Docs)).
		Int("conflicts", len(an.Usage.Conflicts())).
		Msg("Usage scanned")
	return nil
}

// Run performs one full pass: load, scan, resolve. Outputs are opened once
// and closed on every return path. Failures on individual records or output
// lines are counted in the summary and written to the processing log; only
// unreadable definitions or hierarchy files, or outputs that cannot be
// opened, abort the run.
func Run(in Inputs, cfg *config.Config, opts Options) (res Result, err error) {
	res.RunID = uuid.NewString()
	logger := logging.GetLogger("resolve").With().Str("run", res.RunID).Logger()

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = in.RecordsDir
	}

	// Static inputs are loaded before any output is touched.
	an, err := loadIndexes(in, cfg)
	if err != nil {
		return res, err
	}
	defsPath := filepath.Join(in.DefinitionsDir, cfg.Files.Definitions)

	var out *Outputs
	saver := DocumentSaver
	if opts.DryRun {
		w := opts.DryRunLog
		if w == nil {
			w = io.Discard
		}
		out = DiscardOutputs(w, cfg.Tree.ChildIndent)
		saver = NoopSaver
	} else {
		out, err = OpenOutputs(OutputPaths{
			Definitions: defsPath,
			Tree:        filepath.Join(outDir, cfg.Files.TreeOutput),
			Created:     filepath.Join(outDir, cfg.Files.CreatedOutput),
			Matches:     filepath.Join(outDir, cfg.Files.MatchOutput),
			Log:         filepath.Join(outDir, cfg.Files.LogOutput),
		}, cfg.Tree.ChildIndent)
		if err != nil {
			return res, fmt.Errorf("opening outputs: %w", err)
		}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to close outputs")
			res.Summary.Errors++
		}
	}()

	var loadErrors int
	writeLog := func(e runlog.Entry) {
		if werr := out.Log.Write(e); werr != nil {
			logger.Error().Err(werr).Msg("Failed to write processing log")
		}
	}
	writeLog(runlog.Run(res.RunID))

	err = an.scan(in.RecordsDir, cfg.Files.Records, func(path string, lerr error) {
		loadErrors++
		logger.Error().Err(lerr).Str("file", path).Msg("Skipping unreadable record")
		writeLog(runlog.Errorf("loading %s: %v", filepath.Base(path), lerr))
	})
	if err != nil {
		return res, err
	}

	for _, m := range an.Usage.Matches() {
		if werr := out.Matches.WriteLine(m); werr != nil {
			logger.Error().Err(werr).Msg("Failed to write match report")
			loadErrors++
			break
		}
	}

	ctx := NewContext(an.Defs, an.Keys, an.Usage, an.Catalog, out, saver, logger)
	res.Summary = Resolve(ctx)
	res.Summary.Errors += loadErrors

	logger.Info().
		Int("conflicts", res.Summary.Conflicts).
		Int("clones", res.Summary.Clones).
		Int("rewrites", res.Summary.Rewrites).
		Int("logged_errors", out.Log.Count(runlog.TagError)).
		Msg("Resolution finished")
	return res, nil
}
