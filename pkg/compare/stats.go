package compare

import (
	"regexp"
	"sort"
)

// PatternStats holds the share of each set matched by one pattern.
type PatternStats struct {
	Pattern string  `json:"pattern" yaml:"pattern"`
	Words   float64 `json:"words" yaml:"words"` // fraction of vocabulary words matched
	Names   float64 `json:"names" yaml:"names"` // fraction of package names matched
}

// RegexStats computes, for each pattern, the fraction of words and package
// names it matches. Patterns are reported in the order given. An empty set
// yields a fraction of 0.
func RegexStats(words, names Set, patterns []*regexp.Regexp) []PatternStats {
	out := make([]PatternStats, 0, len(patterns))
	for _, re := range patterns {
		part := FilterRegex(words, names, re)
		out = append(out, PatternStats{
			Pattern: re.String(),
			Words:   ratio(part.Words.Len(), words.Len()),
			Names:   ratio(part.Names.Len(), names.Len()),
		})
	}
	return out
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Count is a letter sequence and how often it occurs.
type Count struct {
	Seq   string `json:"seq" yaml:"seq"`
	Count int    `json:"count" yaml:"count"`
}

// Subsequences counts every contiguous run of n characters across the members
// of s and returns the top most common, ties broken alphabetically.
// A top of 0 or less returns every sequence.
func Subsequences(s Set, n, top int) []Count {
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for w := range s {
		runes := []rune(w)
		for i := 0; i+n <= len(runes); i++ {
			counts[string(runes[i:i+n])]++
		}
	}

	out := make([]Count, 0, len(counts))
	for seq, c := range counts {
		out = append(out, Count{Seq: seq, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Seq < out[j].Seq
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}
