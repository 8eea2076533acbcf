package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		name string
		in   Version
		want Version
	}{
		{name: "patch bump", in: Version{1, 0, 0}, want: Version{1, 0, 1}},
		{name: "patch 98", in: Version{3, 4, 98}, want: Version{3, 4, 99}},
		{name: "patch carries into minor", in: Version{1, 2, 99}, want: Version{1, 3, 0}},
		{name: "minor carries into major", in: Version{1, 99, 99}, want: Version{2, 0, 0}},
		{name: "major unbounded", in: Version{99, 99, 99}, want: Version{100, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Increment(tt.in))
		})
	}
}

func TestIncrement_PatchBelowLimit(t *testing.T) {
	for major := 0; major < 3; major++ {
		for minor := 0; minor <= 99; minor += 33 {
			for patch := 0; patch < 99; patch++ {
				v := Version{major, minor, patch}
				got := Increment(v)
				require.Equal(t, patch+1, got.Patch, "version %s", v)
				require.Equal(t, major, got.Major)
				require.Equal(t, minor, got.Minor)
			}
		}
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(" 2.10.7\n")
	require.NoError(t, err)
	assert.Equal(t, Version{2, 10, 7}, v)
	assert.Equal(t, "2.10.7", v.String())

	for _, bad := range []string{"", "1.0", "1.0.0.0", "a.b.c", "1.-1.0", "1..0"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLedger_ReadMissingInitializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.txt")
	l := New(path, nil)

	assert.Equal(t, Default, l.Read())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0\n", string(b))
}

func TestLedger_ReadCorruptFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.txt")
	require.NoError(t, os.WriteFile(path, []byte("not-a-version"), 0o600))

	assert.Equal(t, Default, New(path, nil).Read())
}

func TestLedger_ReadUnreadableFallsBack(t *testing.T) {
	// a directory in place of the file cannot be read as a ledger
	path := t.TempDir()
	assert.Equal(t, Default, New(path, nil).Read())
}

func TestLedger_Reserve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.txt")
	require.NoError(t, os.WriteFile(path, []byte("1.2.99\n"), 0o600))
	l := New(path, nil)

	v, err := l.Reserve()
	require.NoError(t, err)
	assert.Equal(t, Version{1, 3, 0}, v)
	assert.Equal(t, Version{1, 3, 0}, l.Read())
}

func TestLedger_ReserveWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	// the parent of the ledger is a regular file, so MkdirAll fails
	l := New(filepath.Join(blocker, "version.txt"), nil)
	v, err := l.Reserve()

	assert.Equal(t, Version{1, 0, 1}, v)
	var werr *LedgerWriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, Version{1, 0, 1}, werr.Version)
}
