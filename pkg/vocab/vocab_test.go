package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipoke/pkg/errors"
	"github.com/matzehuels/pipoke/pkg/snapshot"
)

func TestDefault(t *testing.T) {
	v := Default()
	require.NotNil(t, v)
	assert.Greater(t, v.Len(), 100)
	assert.True(t, v.Contains("python"))
	assert.Same(t, v, Default(), "bundled vocabulary should be parsed once")
}

func TestLoad_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, snapshot.Write(path, snapshot.New([]string{"numpy", "exists", "über"}, nil)))

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.True(t, first.Set().Equal(second.Set()))
	assert.Equal(t, []string{"exists", "numpy", "über"}, first.Words())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDataUnavailable))
}

func TestNew_KeepsCase(t *testing.T) {
	v := New([]string{"Apple", "apple", "apple"})
	assert.Equal(t, 2, v.Len())
	assert.True(t, v.Contains("Apple"))
}

func TestParseList(t *testing.T) {
	got := parseList("# comment\nalpha\n\n  beta  \n")
	assert.Equal(t, []string{"alpha", "beta"}, got)
}

func TestReadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nalpha\n\n  beta  \nalpha\nGamma\n"), 0o644))

	v, err := ReadList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma", "alpha", "beta"}, v.Words())

	_, err = ReadList(filepath.Join(t.TempDir(), "nope.txt"))
	assert.True(t, errors.Is(err, errors.ErrCodeDataUnavailable))
}
