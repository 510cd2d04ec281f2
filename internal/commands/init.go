package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctsplit/internal/config"
	"github.com/cleared-dev/acctsplit/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var git bool

	cmd := &cobra.Command{
		Use:   "init [definitions-dir]",
		Short: "Write a default acctsplit.yaml into a definitions directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, git)
		},
	}

	cmd.Flags().BoolVar(&git, "git", false, "initialize a git repository and commit the config")

	return cmd
}

func runInit(w io.Writer, dir string, git bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write acctsplit.yaml, keeping an existing one.
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create an empty definitions file if there is none yet.
	defsPath := filepath.Join(dir, cfg.Files.Definitions)
	if _, err := os.Stat(defsPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(defsPath, nil, 0o644); err != nil {
			return fmt.Errorf("writing definitions: %w", err)
		}
	}

	if !git {
		fmt.Fprintf(w, "Wrote %s\n", cfgPath)
		return nil
	}

	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
	}
	hash, err := gitops.CommitPaths(dir, []string{cfgPath, defsPath}, "init: Add acctsplit config", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(w, "Wrote %s (%s)\n", cfgPath, hash)
	return nil
}
