package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) wordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List the vocabulary",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := c.data.Words(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}
			if c.printCounts() {
				c.Logger.Info("words", "count", words.Len())
			}
			p.List(words)
			return nil
		},
	}
}

func (c *CLI) namesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List the package names in the catalog",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.data.Names(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}
			if c.printCounts() {
				c.Logger.Info("package names", "count", names.Len())
			}
			p.List(names)
			return nil
		},
	}
}

// refreshCommand downloads the full project listing and rewrites the
// snapshot's catalog.
func (c *CLI) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Download the current package list from the index",
		Long: `Refresh fetches the complete project listing from the index's simple API and
replaces the catalog in the snapshot. The snapshot is only replaced once the
whole listing was downloaded and parsed; on failure the old one stays in place.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			spin := newSpinner(cmd.Context(), fmt.Sprintf("Fetching %s/simple/", c.client.BaseURL()))
			spin.Start()
			cat, err := c.data.Refresh(cmd.Context())
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Fetched %d projects", len(cat)))

			out := cmd.OutOrStdout()
			printSuccess(out, "Catalog refreshed: %d package names", len(cat))
			printFile(out, c.cfg.SnapshotPath)
			return nil
		},
	}
}
