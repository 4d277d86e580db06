package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipoke/pkg/buildinfo"
	"github.com/matzehuels/pipoke/pkg/errors"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Flags shared by every command (snapshot location, index URL, output format,
// network tuning) are persistent flags on the root. They override values from
// the config file at $XDG_CONFIG_HOME/pipoke/config.toml.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pipoke compares dictionary words with PyPI package names",
		Long: `pipoke compares a vocabulary of dictionary words against the names registered
on the Python Package Index. It finds words that are still free as package
names, names that are not words, and filters both sets by condition or regex.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoSetup] == "true" {
				return nil
			}
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pipoke/config.toml)")
	pf.StringVar(&c.flags.snapshot, "snapshot", "", "snapshot file; a .gz suffix enables compression (default $XDG_DATA_HOME/pipoke/snapshot.json)")
	pf.StringVar(&c.flags.words, "words", "", "plain text word list, one word per line, used instead of the snapshot words")
	pf.StringVar(&c.flags.indexURL, "index-url", "", "package index root (default https://pypi.org)")
	pf.StringVarP(&c.flags.format, "format", "o", "", "output format: text, json or yaml")
	pf.DurationVar(&c.flags.timeout, "timeout", 0, "timeout per HTTP request")
	pf.IntVar(&c.flags.retries, "retries", 0, "retries for transient network failures")
	pf.IntVar(&c.flags.concurrency, "concurrency", 0, "parallel requests for batch lookups")
	pf.IntVar(&c.flags.limit, "limit", 0, "list at most this many members per set in text output (0 = all)")
	pf.BoolVar(&c.flags.noCounts, "no-counts", false, "omit per-category counts")
	pf.DurationVar(&c.flags.cacheTTL, "cache-ttl", 0, "keep package metadata on disk for this long (0 = memory only)")
	pf.StringVar(&c.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(c.claimedCommand())
	root.AddCommand(c.unclaimedCommand())
	root.AddCommand(c.namesNotWordsCommand())
	root.AddCommand(c.filterCommand())
	root.AddCommand(c.regexCommand())
	root.AddCommand(c.freeCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.ngramsCommand())
	root.AddCommand(c.wordsCommand())
	root.AddCommand(c.namesCommand())
	root.AddCommand(c.refreshCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// annotationNoSetup marks commands that run without loading config or data.
const annotationNoSetup = "pipoke/no-setup"

var skipSetup = map[string]string{annotationNoSetup: "true"}

// FormatError renders err as "CODE: message" for the terminal.
func FormatError(err error) string {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return fmt.Sprintf("%s: %s", code, errors.UserMessage(err))
}

// exactArgs is cobra.ExactArgs with a coded error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New(errors.ErrCodeInvalidInput, "%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// rangeArgs is cobra.RangeArgs with a coded error.
func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return errors.New(errors.ErrCodeInvalidInput, "%s accepts between %d and %d arg(s), received %d", cmd.CommandPath(), lo, hi, len(args))
		}
		return nil
	}
}

// minArgs is cobra.MinimumNArgs with a coded error.
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.New(errors.ErrCodeInvalidInput, "%s requires at least %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// noArgs is cobra.NoArgs with a coded error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown argument %q for %s", args[0], cmd.CommandPath())
	}
	return nil
}

func invalidInput(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}
