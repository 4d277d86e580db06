// Package catalog persists the set of package names registered on an index.
//
// A [Store] owns one snapshot file. [Store.Load] reads the persisted catalog;
// [Store.Refresh] replaces it with a fresh listing from the index. Refresh is
// all-or-nothing: the snapshot is rewritten only after the complete listing was
// retrieved and parsed, and the rewrite is an atomic rename, so readers see
// either the old catalog or the new one.
package catalog

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/matzehuels/pipoke/pkg/compare"
	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/observability"
	"github.com/matzehuels/pipoke/pkg/snapshot"
)

// Catalog maps each package name to the URL stub published by the index.
// Only the keys take part in comparisons.
type Catalog map[string]string

// Names returns the package names as a set.
func (c Catalog) Names() compare.Set { return compare.Keys(c) }

// Lister fetches the full project listing of an index.
type Lister interface {
	ListProjects(ctx context.Context) (map[string]string, error)
	BaseURL() string
}

// Store reads and refreshes the catalog held in a snapshot file.
type Store struct {
	path      string
	lister    Lister
	logger    *log.Logger
	lockRetry time.Duration
}

// NewStore creates a store for the snapshot at path. lister may be nil when
// only [Store.Load] is used.
func NewStore(path string, lister Lister) *Store {
	return &Store{
		path:      path,
		lister:    lister,
		logger:    log.Default(),
		lockRetry: 100 * time.Millisecond,
	}
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted catalog. A missing or corrupt snapshot fails with
// DATA_UNAVAILABLE.
func (s *Store) Load(ctx context.Context) (Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := snapshot.Read(s.path)
	if err != nil {
		return nil, err
	}
	return Catalog(snap.Packages), nil
}

// Refresh downloads the index listing and rewrites the snapshot with it. The
// word list already stored in the snapshot is kept.
//
// Returns NETWORK_ERROR or PARSE_ERROR from the listing, DATA_UNAVAILABLE when
// an existing snapshot cannot be read back, and INTERNAL_ERROR when the new
// file cannot be written. In every failure case the previous snapshot is left
// as it was.
func (s *Store) Refresh(ctx context.Context) (cat Catalog, err error) {
	if s.lister == nil {
		return nil, errors.New(errors.ErrCodeInternal, "catalog store has no index client")
	}

	hooks := observability.Catalog()
	indexURL := s.lister.BaseURL()
	start := time.Now()
	hooks.OnRefreshStart(ctx, indexURL)
	defer func() {
		hooks.OnRefreshComplete(ctx, indexURL, len(cat), time.Since(start), err)
	}()

	s.logger.Debug("fetching index listing", "index", indexURL)
	projects, err := s.lister.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("listing parsed", "projects", len(projects), "elapsed", time.Since(start).Round(time.Millisecond))

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	words, err := s.storedWords()
	if err != nil {
		return nil, err
	}
	if err := snapshot.Write(s.path, snapshot.New(words, projects)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write snapshot %s", s.path)
	}
	return Catalog(projects), nil
}

// storedWords returns the words of the current snapshot, or none when there is
// no snapshot yet.
func (s *Store) storedWords() ([]string, error) {
	if _, err := os.Stat(s.path); stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	snap, err := snapshot.Read(s.path)
	if err != nil {
		return nil, err
	}
	return snap.Words, nil
}

// lock takes the cross-process refresh lock kept next to the snapshot.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create snapshot directory")
	}
	fl := flock.New(s.path + ".lock")
	ok, err := fl.TryLockContext(ctx, s.lockRetry)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "lock %s", fl.Path())
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "could not lock %s", fl.Path())
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("release refresh lock", "path", fl.Path(), "error", err)
		}
	}, nil
}
