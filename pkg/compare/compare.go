package compare

import (
	"regexp"
	"strings"

	"github.com/matzehuels/pipoke/pkg/errors"
)

// Predicate reports whether a string is selected by a filter.
type Predicate func(s string) bool

// Partition is the result of filtering the vocabulary and the catalog with the
// same predicate.
type Partition struct {
	Words Set `json:"words" yaml:"words"` // matching vocabulary words
	Names Set `json:"names" yaml:"names"` // matching package names
	Both  Set `json:"both" yaml:"both"`   // Words ∩ Names
}

// Intersection returns the words that are also package names.
func Intersection(words, names Set) Set {
	return words.Intersect(names)
}

// Difference returns the words that are not claimed as package names.
func Difference(words, names Set) Set {
	return words.Minus(names)
}

// NamesNotWords returns the package names that are not vocabulary words.
// It is the complement of [Difference] in the other direction.
func NamesNotWords(words, names Set) Set {
	return names.Minus(words)
}

// Filter applies p to every word and every package name independently.
// A panic raised by p is not recovered.
func Filter(words, names Set, p Predicate) Partition {
	part := Partition{Words: make(Set), Names: make(Set)}
	for w := range words {
		if p(w) {
			part.Words[w] = struct{}{}
		}
	}
	for n := range names {
		if p(n) {
			part.Names[n] = struct{}{}
		}
	}
	part.Both = part.Words.Intersect(part.Names)
	return part
}

// FilterE is [Filter] for predicates that can fail. The first error returned
// by p is passed back to the caller as-is, and no partial result is returned.
func FilterE(words, names Set, p func(string) (bool, error)) (Partition, error) {
	part := Partition{Words: make(Set), Names: make(Set)}
	for _, side := range []struct{ in, out Set }{{words, part.Words}, {names, part.Names}} {
		for s := range side.in {
			ok, err := p(s)
			if err != nil {
				return Partition{}, err
			}
			if ok {
				side.out[s] = struct{}{}
			}
		}
	}
	part.Both = part.Words.Intersect(part.Names)
	return part, nil
}

// CompilePattern compiles a regular expression in Go's RE2 syntax.
// A malformed expression fails with INVALID_PATTERN.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPattern, err, "compile %q", expr)
	}
	return re, nil
}

// FilterRegex selects strings in which re matches anywhere. It is equivalent
// to Filter with re.MatchString as the predicate.
func FilterRegex(words, names Set, re *regexp.Regexp) Partition {
	return Filter(words, names, re.MatchString)
}

// Unclaimed returns the candidates that are not package names. Candidates are
// trimmed of surrounding whitespace; empty entries are dropped.
func Unclaimed(candidates []string, names Set) Set {
	r := make(Set)
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" && !names.Has(c) {
			r[c] = struct{}{}
		}
	}
	return r
}

// ParseList splits a comma-separated list, e.g. "spam, ham,eggs".
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
