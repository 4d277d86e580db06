package compare

import (
	"encoding/json"
	"sort"
)

// Set is an unordered collection of unique strings.
type Set map[string]struct{}

// NewSet returns a set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Keys returns the key set of m. Values are discarded.
func Keys[V any](m map[string]V) Set {
	s := make(Set, len(m))
	for k := range m {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether x is in s.
func (s Set) Has(x string) bool {
	_, ok := s[x]
	return ok
}

// Add inserts x into s.
func (s Set) Add(x string) {
	s[x] = struct{}{}
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending byte order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the members present in both s and o.
func (s Set) Intersect(o Set) Set {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	r := make(Set)
	for k := range small {
		if large.Has(k) {
			r[k] = struct{}{}
		}
	}
	return r
}

// Minus returns the members of s that are not in o.
func (s Set) Minus(o Set) Set {
	r := make(Set)
	for k := range s {
		if !o.Has(k) {
			r[k] = struct{}{}
		}
	}
	return r
}

// Union returns the members present in either s or o.
func (s Set) Union(o Set) Set {
	r := make(Set, len(s)+len(o))
	for k := range s {
		r[k] = struct{}{}
	}
	for k := range o {
		r[k] = struct{}{}
	}
	return r
}

// Equal reports whether s and o hold the same members.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array of strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

// MarshalYAML encodes the set as a sorted YAML sequence.
func (s Set) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}
