package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctsplit/internal/buildinfo"
	"github.com/cleared-dev/acctsplit/internal/logging"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "acctsplit",
		Short:   "Split chart-of-accounts entries shared by several business objects",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cmd.ErrOrStderr(), verbosity)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase diagnostic output (-v, -vv, -vvv)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newConflictsCommand())
	rootCmd.AddCommand(newTreeCommand())

	return rootCmd
}
