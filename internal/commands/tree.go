package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctsplit/internal/hierarchy"
	"github.com/cleared-dev/acctsplit/internal/model"
)

func newTreeCommand() *cobra.Command {
	var children bool

	cmd := &cobra.Command{
		Use:   "tree <hierarchy-file> [account-key]",
		Short: "Print an account and every account placed under it",
		Long: `Prints the subtree under account-key, or the whole hierarchy when no key
is given. With --children, prints one "parent: child, child" line per account
that has children instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) > 1 {
				key = args[1]
			}
			return runTree(cmd.OutOrStdout(), args[0], key, children)
		},
	}

	cmd.Flags().BoolVar(&children, "children", false, "list each account's children instead of an indented tree")

	return cmd
}

func runTree(w io.Writer, hierarchyFile, key string, children bool) error {
	tree, err := hierarchy.Load(hierarchyFile)
	if err != nil {
		return err
	}

	var keys []string
	if key != "" {
		if len(tree.Find(key)) == 0 {
			return fmt.Errorf("account %s is not in the hierarchy", key)
		}
		keys = []string{key}
	} else {
		for _, i := range tree.Roots() {
			keys = append(keys, tree.Node(i).Def.Key())
		}
	}

	for _, k := range keys {
		if children {
			err = writeChildren(w, tree.Descendants(k))
		} else {
			err = tree.WriteSubtree(w, k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeChildren(w io.Writer, desc map[string][]model.Definition) error {
	parents := make([]string, 0, len(desc))
	for p := range desc {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	for _, p := range parents {
		names := make([]string, len(desc[p]))
		for i, c := range desc[p] {
			names[i] = c.Key()
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", p, strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	return nil
}
