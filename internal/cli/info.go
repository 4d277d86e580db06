package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// infoCommand looks up package metadata on the index. One name renders its
// metadata; several are fetched concurrently and missing ones are reported
// inline.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>...",
		Short: "Show metadata and release dates for packages",
		Example: `  pipoke info requests
  pipoke info flask django snappy -o json`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				info, err := c.client.FetchPackage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				p.Render("", info, false)
				return nil
			}

			prog := newProgress(c.Logger)
			results, err := c.client.FetchMany(cmd.Context(), args, c.cfg.Concurrency)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Looked up %d packages", len(results)))
			p.Render("package info", results, c.printCounts())
			return nil
		},
	}
}
