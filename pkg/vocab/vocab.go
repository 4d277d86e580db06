// Package vocab provides the reference set of dictionary words.
//
// A [Vocabulary] is immutable once built. It comes either from the "words"
// array of a snapshot file ([Load]) or from the word list bundled into the
// binary ([Default]).
package vocab

import (
	"bufio"
	_ "embed"
	"os"
	"strings"
	"sync"

	"github.com/matzehuels/pipoke/pkg/compare"
	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/snapshot"
)

//go:embed words.txt
var bundled string

// Vocabulary is an immutable set of words.
type Vocabulary struct {
	words compare.Set
}

// New builds a vocabulary from a word list. Duplicates collapse; case and
// surrounding whitespace are kept as given.
func New(words []string) *Vocabulary {
	return &Vocabulary{words: compare.NewSet(words...)}
}

// Load reads the word set stored in the snapshot at path. A missing or corrupt
// snapshot fails with DATA_UNAVAILABLE.
func Load(path string) (*Vocabulary, error) {
	s, err := snapshot.Read(path)
	if err != nil {
		return nil, err
	}
	return New(s.Words), nil
}

// ReadList reads a plain word list, one word per line. Blank lines and lines
// starting with '#' are skipped.
func ReadList(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataUnavailable, err, "read word list %s", path)
	}
	return New(parseList(string(data))), nil
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the bundled vocabulary. It is parsed on first use.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVocab = New(parseList(bundled))
	})
	return defaultVocab
}

func parseList(text string) []string {
	var words []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}

// Set returns the words as a set. The returned set is shared and must not be
// modified.
func (v *Vocabulary) Set() compare.Set { return v.words }

// Len returns the number of words.
func (v *Vocabulary) Len() int { return v.words.Len() }

// Contains reports whether w is a vocabulary word.
func (v *Vocabulary) Contains(w string) bool { return v.words.Has(w) }

// Words returns the words in sorted order.
func (v *Vocabulary) Words() []string { return v.words.Sorted() }
