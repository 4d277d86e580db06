package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipoke/pkg/compare"
)

// setCommand builds a command that derives one set from words and names and
// renders it.
func (c *CLI) setCommand(use, short, label string, op func(words, names compare.Set) compare.Set) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			words, names, err := c.data.Both(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}
			p.Render(label, op(words, names), c.printCounts())
			return nil
		},
	}
}

func (c *CLI) claimedCommand() *cobra.Command {
	return c.setCommand("claimed", "List words that are registered package names",
		"words that are package names", compare.Intersection)
}

func (c *CLI) unclaimedCommand() *cobra.Command {
	return c.setCommand("unclaimed", "List words that are not registered package names",
		"words that are not package names", compare.Difference)
}

func (c *CLI) namesNotWordsCommand() *cobra.Command {
	return c.setCommand("names-not-words", "List package names that are not vocabulary words",
		"package names that are not words", compare.NamesNotWords)
}

// partition renders the result of filtering both sets.
func (c *CLI) partition(cmd *cobra.Command, label string, filter func(words, names compare.Set) compare.Partition) error {
	words, names, err := c.data.Both(cmd.Context())
	if err != nil {
		return err
	}
	p, err := c.presenter(cmd)
	if err != nil {
		return err
	}
	p.Render(label, filter(words, names), c.printCounts())
	return nil
}

func (c *CLI) filterCommand() *cobra.Command {
	var help strings.Builder
	for _, name := range compare.ConditionNames() {
		fmt.Fprintf(&help, "  %-10s %s\n", name, compare.ConditionHelp(name))
	}

	return &cobra.Command{
		Use:   "filter <condition> [arg]",
		Short: "Filter words and package names by a named condition",
		Long: `Filter applies one condition to the vocabulary and to the package names
independently and reports the matches of each, plus those that are both.

Conditions:
` + help.String(),
		Example: `  pipoke filter prefix py
  pipoke filter maxlen 4
  pipoke filter alpha`,
		Args:      rangeArgs(1, 2),
		ValidArgs: compare.ConditionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 2 {
				arg = args[1]
			}
			pred, err := compare.Condition(args[0], arg)
			if err != nil {
				return err
			}
			label := strings.TrimSpace(args[0] + " " + arg)
			return c.partition(cmd, label, func(words, names compare.Set) compare.Partition {
				return compare.Filter(words, names, pred)
			})
		},
	}
}

func (c *CLI) regexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regex <pattern>",
		Short: "Filter words and package names by a regular expression",
		Long: `Regex keeps the members in which the pattern matches anywhere. Anchor with
^ and $ to match whole strings. The syntax is RE2.`,
		Example: `  pipoke regex '^py'
  pipoke regex 'ify$'`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			re, err := compare.CompilePattern(args[0])
			if err != nil {
				return err
			}
			return c.partition(cmd, re.String(), func(words, names compare.Set) compare.Partition {
				return compare.FilterRegex(words, names, re)
			})
		},
	}
}

func (c *CLI) freeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "free <name>[,<name>...]...",
		Short: "Show which candidate names are not registered packages",
		Example: `  pipoke free spam,ham,eggs
  pipoke free snappy flask`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var candidates []string
			for _, a := range args {
				candidates = append(candidates, compare.ParseList(a)...)
			}
			names, err := c.data.Names(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}
			p.Render("not package names", compare.Unclaimed(candidates, names), c.printCounts())
			return nil
		},
	}
}

func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <pattern>...",
		Short: "Show the share of words and package names matching each pattern",
		Example: `  pipoke stats '^py' 'py$' '[0-9]'`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := make([]*regexp.Regexp, 0, len(args))
			for _, a := range args {
				re, err := compare.CompilePattern(a)
				if err != nil {
					return err
				}
				patterns = append(patterns, re)
			}
			words, names, err := c.data.Both(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}
			p.Render("pattern matches", compare.RegexStats(words, names, patterns), false)
			return nil
		},
	}
}

func (c *CLI) ngramsCommand() *cobra.Command {
	var (
		n    int
		top  int
		from string
	)
	cmd := &cobra.Command{
		Use:   "ngrams",
		Short: "Show the most common letter sequences",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				s   compare.Set
				err error
			)
			switch from {
			case "names":
				s, err = c.data.Names(cmd.Context())
			case "words":
				s, err = c.data.Words(cmd.Context())
			default:
				return invalidInput("--from must be words or names, got %q", from)
			}
			if err != nil {
				return err
			}
			if n < 1 {
				return invalidInput("--size must be at least 1")
			}
			p, err := c.presenter(cmd)
			if err != nil {
				return err
			}
			p.Render(fmt.Sprintf("%d-grams in %s", n, from), compare.Subsequences(s, n, top), false)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "size", "n", 2, "sequence length")
	cmd.Flags().IntVar(&top, "top", 20, "number of sequences to show (0 = all)")
	cmd.Flags().StringVar(&from, "from", "names", "set to scan: words or names")
	return cmd
}
