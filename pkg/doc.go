// Package pkg provides the libraries behind pipoke, a tool that compares
// dictionary words with the package names registered on PyPI.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Data: [vocab] (the word list), [catalog] (the package names), and
//     [snapshot] (the on-disk file holding both)
//  2. Comparison: [compare] (set algebra, condition and regex filters, pattern
//     statistics)
//  3. Integrations: [integrations] and [integrations/pypi] (the simple index
//     listing and the JSON metadata API)
//  4. Presentation and plumbing: [report], [dataset], [config], [cache],
//     [httputil], [observability], and [errors]
//
// # Architecture
//
//	snapshot file ──→ [vocab] words ─┐
//	              └─→ [catalog] names ┴─→ [compare] ─→ [report]
//	PyPI /simple/ ──→ [catalog] Refresh (atomic rewrite of the snapshot)
//	PyPI /pypi/{name}/json ──→ [integrations/pypi] FetchPackage
//
// # Quick Start
//
//	store := catalog.NewStore(path, pypi.NewClient())
//	data := dataset.New(store, dataset.WithFallback(vocab.Default()))
//
//	words, names, err := data.Both(ctx)
//	if err != nil {
//	    return err
//	}
//	free := compare.Difference(words, names)
//	report.New(os.Stdout, report.FormatText).Render("free names", free, true)
package pkg
