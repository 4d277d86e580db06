// Package compare implements set algebra and filtering over the vocabulary
// and the package catalog.
//
// # Overview
//
// Both inputs are flat string sets ([Set]). Catalog URL stubs play no part in
// any comparison; callers pass the catalog keys only (see [Keys]).
//
//	words := compare.NewSet("numpy", "exists", "but", "does")
//	names := compare.Keys(catalog)
//
//	compare.Intersection(words, names)  // {"numpy"}
//	compare.Difference(words, names)    // {"exists", "but", "does"}
//
// # Filtering
//
// [Filter] applies a [Predicate] independently to each set. The Both field of
// the returned [Partition] is exactly Words ∩ Names; it is never computed by a
// joint predicate over pairs.
//
// [FilterRegex] takes a pre-compiled pattern and matches anywhere in the string
// (unanchored). Compile user input with [CompilePattern] so malformed patterns
// fail with INVALID_PATTERN before any filtering happens.
//
// # Case
//
// No function in this package normalizes case. Strings are compared exactly as
// the two sources publish them.
//
// All functions are pure: they perform no I/O and never mutate their inputs.
package compare
