// Package report renders comparison results for people and for programs.
//
// A [Presenter] writes to one destination in one [Format]. Text output is
// styled with lipgloss when the destination is a terminal; JSON and YAML
// output is a single document per call. Write errors are ignored.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pipoke/pkg/compare"
	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/integrations/pypi"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat validates a format name against [Formats]. The empty string
// means text.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	if slices.Contains(Formats, f) {
		return f, nil
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// Presenter writes results to w.
type Presenter struct {
	w      io.Writer
	format Format
	limit  int
	st     styles
}

type styles struct {
	title, count, dim, value lipgloss.Style
}

// New creates a presenter. Colors are enabled only when w is a terminal.
func New(w io.Writer, format Format) *Presenter {
	r := lipgloss.NewRenderer(w)
	return &Presenter{
		w:      w,
		format: format,
		st: styles{
			title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
			count: r.NewStyle().Foreground(lipgloss.Color("36")),
			dim:   r.NewStyle().Foreground(lipgloss.Color("240")),
			value: r.NewStyle().Foreground(lipgloss.Color("255")),
		},
	}
}

// SetLimit caps how many members of each set are listed in text output.
// Zero lists everything. Counts always reflect the full sets.
func (p *Presenter) SetLimit(n int) { p.limit = max(n, 0) }

// Result is any value produced by the comparator or the package client.
type Result = any

type document struct {
	Label  string         `json:"label" yaml:"label"`
	Counts map[string]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	Result any            `json:"result" yaml:"result"`
}

// Render writes r under label and returns r unchanged. With printCounts the
// output starts with per-category counts: "N words", "N package names" and
// "N that are both" for a [compare.Partition], or a single total otherwise.
func (p *Presenter) Render(label string, r Result, printCounts bool) Result {
	switch p.format {
	case FormatJSON, FormatYAML:
		doc := document{Label: label, Result: r}
		if printCounts {
			doc.Counts = counts(r)
		}
		p.encode(doc)
	default:
		p.renderText(label, r, printCounts)
	}
	return r
}

// List writes the members of s in sorted order. Text output is one bare
// member per line, without headings or styling, so it can be piped.
func (p *Presenter) List(s compare.Set) {
	switch p.format {
	case FormatJSON, FormatYAML:
		p.encode(s.Sorted())
	default:
		items := s.Sorted()
		if p.limit > 0 && len(items) > p.limit {
			items = items[:p.limit]
		}
		for _, it := range items {
			p.println(it)
		}
	}
}

func (p *Presenter) encode(v any) {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		_ = enc.Encode(v)
		_ = enc.Close()
	}
}

// counts maps category names to sizes.
func counts(r Result) map[string]int {
	switch v := r.(type) {
	case compare.Partition:
		return map[string]int{"words": v.Words.Len(), "package_names": v.Names.Len(), "both": v.Both.Len()}
	case compare.Set:
		return map[string]int{"total": v.Len()}
	case []compare.PatternStats:
		return map[string]int{"total": len(v)}
	case []compare.Count:
		return map[string]int{"total": len(v)}
	case []pypi.Result:
		found := 0
		for _, res := range v {
			if !res.NotFound {
				found++
			}
		}
		return map[string]int{"found": found, "not_found": len(v) - found}
	}
	return nil
}

func (p *Presenter) println(s string) { _, _ = fmt.Fprintln(p.w, s) }

func (p *Presenter) countLine(n int, what string) {
	p.println(p.st.count.Render(fmt.Sprint(n)) + " " + what)
}

func (p *Presenter) renderText(label string, r Result, printCounts bool) {
	if label != "" {
		p.println(p.st.title.Render(label))
	}
	switch v := r.(type) {
	case compare.Partition:
		if printCounts {
			p.countLine(v.Words.Len(), "words")
			p.countLine(v.Names.Len(), "package names")
			p.countLine(v.Both.Len(), "that are both")
		}
		p.members(v.Both, "both")
		p.members(v.Words.Minus(v.Both), "words only")
		p.members(v.Names.Minus(v.Both), "package names only")
	case compare.Set:
		if printCounts {
			p.countLine(v.Len(), "total")
		}
		p.members(v, "")
	case []compare.PatternStats:
		p.patternStats(v)
	case []compare.Count:
		for _, c := range v {
			p.println(fmt.Sprintf("%-8s %s", c.Seq, p.st.count.Render(fmt.Sprint(c.Count))))
		}
	case *pypi.PackageInfo:
		p.packageInfo(v)
	case []pypi.Result:
		if printCounts {
			c := counts(v)
			p.countLine(c["found"], "found")
			p.countLine(c["not_found"], "not found")
		}
		for _, res := range v {
			if res.NotFound {
				p.println(res.Name + " " + p.st.dim.Render("(not found)"))
				continue
			}
			p.packageInfo(res.Info)
		}
	default:
		p.println(fmt.Sprint(v))
	}
}

func (p *Presenter) members(s compare.Set, heading string) {
	if s.Len() == 0 {
		return
	}
	if heading != "" {
		p.println(p.st.dim.Render(heading + ":"))
	}
	items := s.Sorted()
	shown := items
	if p.limit > 0 && len(items) > p.limit {
		shown = items[:p.limit]
	}
	for _, it := range shown {
		p.println("  " + p.st.value.Render(it))
	}
	if rest := len(items) - len(shown); rest > 0 {
		p.println(p.st.dim.Render(fmt.Sprintf("  ... and %d more", rest)))
	}
}

func (p *Presenter) patternStats(stats []compare.PatternStats) {
	width := len("pattern")
	for _, s := range stats {
		width = max(width, len(s.Pattern))
	}
	p.println(p.st.dim.Render(fmt.Sprintf("%-*s  %8s  %8s", width, "pattern", "words", "names")))
	for _, s := range stats {
		p.println(fmt.Sprintf("%-*s  %7.2f%%  %7.2f%%", width, s.Pattern, 100*s.Words, 100*s.Names))
	}
}

func (p *Presenter) packageInfo(info *pypi.PackageInfo) {
	kv := func(k, v string) {
		if v != "" {
			p.println("  " + p.st.dim.Render(fmt.Sprintf("%-10s", k)) + " " + v)
		}
	}
	p.println(p.st.value.Render(info.Name) + " " + p.st.count.Render(info.Version))
	kv("summary", info.Summary)
	kv("license", info.License)
	kv("author", info.Author)
	kv("homepage", info.HomePage)
	kv("python", info.RequiresPython)
	if stable, ok := info.LatestStable(); ok && stable != info.Version {
		kv("stable", stable)
	}
	if last, ok := info.LastReleaseDate(); ok {
		kv("released", last.Format("2006-01-02"))
	}
	if n := len(info.ReleaseDates()); n > 0 {
		kv("releases", fmt.Sprint(n))
	}
	if len(info.Dependencies) > 0 {
		kv("requires", strings.Join(info.Dependencies, ", "))
	}
}
