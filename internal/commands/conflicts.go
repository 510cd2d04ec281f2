package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctsplit/internal/id"
	"github.com/cleared-dev/acctsplit/internal/logging"
	"github.com/cleared-dev/acctsplit/internal/resolve"
	"github.com/cleared-dev/acctsplit/internal/runlog"
)

func newConflictsCommand() *cobra.Command {
	var configPath, outputDir string

	cmd := &cobra.Command{
		Use:   "conflicts <hierarchy-file> <definitions-dir> <records-dir>",
		Short: "List accounts shared by more than one object without changing anything",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := resolve.Inputs{
				HierarchyFile:  args[0],
				DefinitionsDir: args[1],
				RecordsDir:     args[2],
			}
			return runConflicts(cmd.OutOrStdout(), in, configPath, outputDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default <definitions-dir>/acctsplit.yaml)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory holding the processing log of earlier runs (default <records-dir>)")

	return cmd
}

func runConflicts(w io.Writer, in resolve.Inputs, configPath, outputDir string) error {
	cfg, err := loadConfig(configPath, in.DefinitionsDir)
	if err != nil {
		return err
	}

	logger := logging.GetLogger("conflicts")
	an, err := resolve.Analyze(in, cfg, func(path string, err error) {
		logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable record")
	})
	if err != nil {
		return err
	}

	conflicts := an.Usage.Conflicts()
	for _, u := range conflicts {
		fmt.Fprintf(w, "%s (%d objects)\n", u.Key, len(u.Consumers))
		if types := groupTypes(an, u.Key); len(types) > 1 {
			fmt.Fprintf(w, "  group: %s\n", strings.Join(types, ", "))
		}
		for _, c := range u.Consumers {
			files := make([]string, len(c.Files))
			for i, f := range c.Files {
				files[i] = filepath.Base(f)
			}
			fmt.Fprintf(w, "  %s: %s\n", c.Name, strings.Join(files, ", "))
		}
	}

	split := 0
	for _, d := range an.Defs.All() {
		if id.IsClone(d.Key()) {
			split++
		}
	}
	skipped := 0
	for _, doc := range an.Catalog.Docs {
		skipped += doc.Skipped
	}
	fmt.Fprintf(w, "%d conflicts, %d split accounts already defined, %d objects skipped\n", len(conflicts), split, skipped)

	if outputDir == "" {
		outputDir = in.RecordsDir
	}
	entries, err := runlog.Read(filepath.Join(outputDir, cfg.Files.LogOutput))
	if err != nil {
		logger.Warn().Err(err).Msg("Could not read processing log")
		return nil
	}
	if runs := runlog.Count(entries, runlog.TagRun); runs > 0 {
		fmt.Fprintf(w, "Processing log: %d runs, %d accounts created, %d records rewritten, %d errors\n",
			runs,
			runlog.Count(entries, runlog.TagClone),
			runlog.Count(entries, runlog.TagRewrite),
			runlog.Count(entries, runlog.TagError))
	}
	return nil
}

// groupTypes lists the triplicate siblings defined alongside key.
func groupTypes(an *resolve.Analysis, key string) []string {
	def, ok := an.Defs.Get(key)
	if !ok {
		return nil
	}
	group, ok := an.Defs.Group(def.GroupKey())
	if !ok {
		return nil
	}
	var types []string
	for _, t := range group.Types() {
		types = append(types, string(t))
	}
	return types
}
