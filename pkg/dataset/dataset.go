// Package dataset holds the vocabulary and catalog for one command invocation.
//
// A [Dataset] loads each set at most once and hands out the same immutable
// set on every later call. [Dataset.Refresh] swaps in a freshly downloaded
// catalog.
package dataset

import (
	"context"
	"sync"

	"github.com/matzehuels/pipoke/pkg/catalog"
	"github.com/matzehuels/pipoke/pkg/compare"
	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/vocab"
)

// Dataset caches the vocabulary and catalog. It is safe for concurrent use.
type Dataset struct {
	store    *catalog.Store
	wordList string
	fallback *vocab.Vocabulary

	mu      sync.Mutex
	words   *vocab.Vocabulary
	catalog catalog.Catalog
}

// Option configures a [Dataset].
type Option func(*Dataset)

// WithWordList reads words from a plain text file instead of the snapshot.
func WithWordList(path string) Option {
	return func(d *Dataset) { d.wordList = path }
}

// WithFallback supplies the vocabulary used when the snapshot is missing or
// stores no words.
func WithFallback(v *vocab.Vocabulary) Option {
	return func(d *Dataset) { d.fallback = v }
}

// New creates a dataset backed by store.
func New(store *catalog.Store, opts ...Option) *Dataset {
	d := &Dataset{store: store}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Vocabulary returns the word list, loading it on first call.
func (d *Dataset) Vocabulary(ctx context.Context) (*vocab.Vocabulary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.words != nil {
		return d.words, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := d.loadWords()
	if err != nil {
		return nil, err
	}
	d.words = v
	return v, nil
}

func (d *Dataset) loadWords() (*vocab.Vocabulary, error) {
	if d.wordList != "" {
		return vocab.ReadList(d.wordList)
	}
	v, err := vocab.Load(d.store.Path())
	switch {
	case err != nil && d.fallback != nil && errors.Is(err, errors.ErrCodeDataUnavailable):
		return d.fallback, nil
	case err != nil:
		return nil, err
	case v.Len() == 0 && d.fallback != nil:
		return d.fallback, nil
	}
	return v, nil
}

// Words returns the vocabulary as a set.
func (d *Dataset) Words(ctx context.Context) (compare.Set, error) {
	v, err := d.Vocabulary(ctx)
	if err != nil {
		return nil, err
	}
	return v.Set(), nil
}

// Catalog returns the package catalog, loading it on first call.
func (d *Dataset) Catalog(ctx context.Context) (catalog.Catalog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.catalog != nil {
		return d.catalog, nil
	}
	cat, err := d.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	d.catalog = cat
	return cat, nil
}

// Names returns the catalog's package names as a set.
func (d *Dataset) Names(ctx context.Context) (compare.Set, error) {
	cat, err := d.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Names(), nil
}

// Both loads words and names together.
func (d *Dataset) Both(ctx context.Context) (words, names compare.Set, err error) {
	if words, err = d.Words(ctx); err != nil {
		return nil, nil, err
	}
	if names, err = d.Names(ctx); err != nil {
		return nil, nil, err
	}
	return words, names, nil
}

// Refresh downloads a new catalog and makes it the cached one. On failure the
// cached catalog, if any, is kept.
func (d *Dataset) Refresh(ctx context.Context) (catalog.Catalog, error) {
	cat, err := d.store.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.catalog = cat
	d.mu.Unlock()
	return cat, nil
}
