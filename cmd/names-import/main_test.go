package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realm-map/internal/naming"
)

func TestSplitPair(t *testing.T) {
	m, a, ok := splitPair("  Sri Lanka =  Lanka Dvipa ")
	require.True(t, ok)
	assert.Equal(t, "Sri Lanka", m)
	assert.Equal(t, "Lanka Dvipa", a)

	_, _, ok = splitPair("India")
	assert.False(t, ok)
	_, _, ok = splitPair("India = ")
	assert.False(t, ok)
}

func TestReadEntries(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"modern":"India","alternate":"Aryavarta"}]`), 0o644))
	xs, err := readEntries(good)
	require.NoError(t, err)
	assert.Equal(t, []naming.Entry{{Modern: "India", Alternate: "Aryavarta"}}, xs)

	dup := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`[{"modern":"India","alternate":"A"},{"modern":"India","alternate":"B"}]`), 0o644))
	_, err = readEntries(dup)
	assert.ErrorIs(t, err, naming.ErrDuplicateName)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
	_, err = readEntries(bad)
	assert.Error(t, err)
}

func TestReadEntriesTrimsBeforeDuplicateCheck(t *testing.T) {
	p := filepath.Join(t.TempDir(), "padded.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"modern":"India","alternate":"A"},{"modern":"India ","alternate":" B "}]`), 0o644))
	_, err := readEntries(p)
	assert.ErrorIs(t, err, naming.ErrDuplicateName)

	require.NoError(t, os.WriteFile(p, []byte(`[{"modern":" Nepal ","alternate":" Nepala"}]`), 0o644))
	xs, err := readEntries(p)
	require.NoError(t, err)
	assert.Equal(t, []naming.Entry{{Modern: "Nepal", Alternate: "Nepala"}}, xs)
}
