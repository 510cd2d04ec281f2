package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctsplit/internal/config"
	"github.com/cleared-dev/acctsplit/internal/gitops"
	"github.com/cleared-dev/acctsplit/internal/logging"
	"github.com/cleared-dev/acctsplit/internal/resolve"
)

type resolveFlags struct {
	configPath string
	outputDir  string
	dryRun     bool
	commit     bool
}

func newResolveCommand() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <hierarchy-file> <definitions-dir> <records-dir>",
		Short: "Give every object sharing an account its own copy of it",
		Long: `Scans the record files for accounts referenced by more than one object.
Each such object gets a private copy of the account: the new definition is
appended to the definitions file, its tree placement is written to the tree
output, and the object's references are rewritten to the new account.`,
		// Wrong argument counts print usage and exit cleanly.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return cmd.Usage()
			}
			in := resolve.Inputs{
				HierarchyFile:  args[0],
				DefinitionsDir: args[1],
				RecordsDir:     args[2],
			}
			return runResolve(cmd.OutOrStdout(), in, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "config file (default <definitions-dir>/"+config.FileName+")")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "directory for the tree, created, match and log outputs (default <records-dir>)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "detect and log conflicts without changing any file")
	cmd.Flags().BoolVar(&flags.commit, "commit", false, "commit rewritten records when the records directory is a git repository")

	return cmd
}

func loadConfig(path, definitionsDir string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOptional(filepath.Join(definitionsDir, config.FileName))
}

func runResolve(w io.Writer, in resolve.Inputs, flags resolveFlags) error {
	cfg, err := loadConfig(flags.configPath, in.DefinitionsDir)
	if err != nil {
		return err
	}

	res, err := resolve.Run(in, cfg, resolve.Options{
		OutputDir: flags.outputDir,
		DryRun:    flags.dryRun,
		DryRunLog: w,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, res.Summary.String())

	if flags.dryRun || res.Summary.Rewrites == 0 || !(flags.commit || cfg.Git.AutoCommit) {
		return nil
	}
	return commitRun(w, in, cfg, res)
}

func commitRun(w io.Writer, in resolve.Inputs, cfg *config.Config, res resolve.Result) error {
	logger := logging.GetLogger("commit")
	if !gitops.IsRepo(in.RecordsDir) {
		logger.Warn().Str("dir", in.RecordsDir).Msg("Records directory is not a git repository, skipping commit")
		return nil
	}

	paths := []string{in.RecordsDir, filepath.Join(in.DefinitionsDir, cfg.Files.Definitions)}
	msg := gitops.RunMessage(res.RunID, res.Summary.Clones, res.Summary.Rewrites)
	hash, err := gitops.CommitPaths(in.RecordsDir, paths, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	if hash != "" {
		fmt.Fprintf(w, "Committed %s\n", hash)
	}
	return nil
}
