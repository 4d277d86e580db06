// Package snapshot reads and writes the on-disk container holding the
// vocabulary and the package catalog.
//
// The container is a single JSON document:
//
//	{
//	  "version": 1,
//	  "words": ["aardvark", "abacus", ...],
//	  "packages": {"numpy": "/simple/numpy/", ...}
//	}
//
// Files whose name ends in ".gz" are gzip-compressed. Writes go to a temporary
// file in the same directory that is renamed over the target only once fully
// written, so readers never observe a partial snapshot.
package snapshot

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"
	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/pipoke/pkg/errors"
)

// FormatVersion is the container version written by [Write].
const FormatVersion = 1

// Snapshot is the decoded container.
type Snapshot struct {
	Version  int               `json:"version"`
	Words    []string          `json:"words"`
	Packages map[string]string `json:"packages"`
}

// New builds a snapshot from a word list and a catalog. Words are sorted so
// that identical inputs produce identical files.
func New(words []string, packages map[string]string) *Snapshot {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	if packages == nil {
		packages = map[string]string{}
	}
	return &Snapshot{Version: FormatVersion, Words: sorted, Packages: packages}
}

// Read loads the snapshot at path. A missing, unreadable, or undecodable file
// fails with DATA_UNAVAILABLE.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataUnavailable, err, "open snapshot %s", path)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if isGzip(path) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataUnavailable, err, "decompress snapshot %s", path)
		}
		defer zr.Close()
		r = zr
	}

	s, err := Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataUnavailable, err, "decode snapshot %s", path)
	}
	return s, nil
}

// Decode parses a snapshot document from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "invalid snapshot document")
	}
	if s.Version == 0 || s.Version > FormatVersion {
		return nil, errors.New(errors.ErrCodeParse, "unsupported snapshot version %d", s.Version)
	}
	if s.Packages == nil {
		s.Packages = map[string]string{}
	}
	return &s, nil
}

// Write atomically replaces the file at path with s. The parent directory is
// created if needed. A replaced file keeps its permissions; new files get
// 0644. On error the previous file, if any, is left untouched.
func Write(path string, s *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	pf, err := renameio.TempFile(filepath.Dir(path), path)
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := pf.Chmod(mode); err != nil {
		return err
	}

	var w io.Writer = pf
	var zw *gzip.Writer
	if isGzip(path) {
		zw = gzip.NewWriter(pf)
		w = zw
	}

	if err := json.NewEncoder(w).Encode(s); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return pf.CloseAtomicallyReplace()
}

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}
