package ledger

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultPath = "version.txt"

	componentMax = 99
)

// Default is the version used when the ledger is absent or unreadable.
var Default = Version{Major: 1}

type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: want MAJOR.MINOR.PATCH", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: component %q is not a non-negative integer", s, p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Increment bumps the patch component, carrying into minor and major once a
// component passes 99. Major is unbounded.
func Increment(v Version) Version {
	v.Patch++
	if v.Patch > componentMax {
		v.Patch = 0
		v.Minor++
	}
	if v.Minor > componentMax {
		v.Minor = 0
		v.Major++
	}
	return v
}

type LedgerReadError struct {
	Path string
	Err  error
}

func (e *LedgerReadError) Error() string {
	return fmt.Sprintf("read version ledger %s: %v", e.Path, e.Err)
}

func (e *LedgerReadError) Unwrap() error { return e.Err }

// LedgerWriteError means the next run may reissue the same version.
type LedgerWriteError struct {
	Path    string
	Version Version
	Err     error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("write version %s to ledger %s: %v", e.Version, e.Path, e.Err)
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }

// Ledger persists the last issued version in a single-line text file.
// It assumes a single writer; concurrent runs may race on the file.
type Ledger struct {
	path string
	log  *slog.Logger
}

func New(path string, log *slog.Logger) *Ledger {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ledger{path: path, log: log}
}

// Read returns the persisted version. A missing ledger is initialized to the
// default version. Unreadable or corrupt ledgers are logged and the default is
// returned; Read never fails.
func (l *Ledger) Read() Version {
	b, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Info("version ledger not found, initializing", "path", l.path, "version", Default.String())
		if werr := l.Write(Default); werr != nil {
			l.log.Warn("could not initialize version ledger", "error", werr)
		}
		return Default
	}
	if err != nil {
		l.log.Warn("falling back to default version", "error", &LedgerReadError{Path: l.path, Err: err})
		return Default
	}

	v, err := Parse(string(b))
	if err != nil {
		l.log.Warn("falling back to default version", "error", &LedgerReadError{Path: l.path, Err: err})
		return Default
	}
	return v
}

func (l *Ledger) Write(v Version) error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return &LedgerWriteError{Path: l.path, Version: v, Err: err}
		}
	}
	if err := os.WriteFile(l.path, []byte(v.String()+"\n"), 0o600); err != nil {
		return &LedgerWriteError{Path: l.path, Version: v, Err: err}
	}
	return nil
}

// Reserve reads the ledger, increments it and persists the result before the
// document is built. The new version is returned even if persisting fails; the
// error is then a *LedgerWriteError.
func (l *Ledger) Reserve() (Version, error) {
	next := Increment(l.Read())
	if err := l.Write(next); err != nil {
		return next, err
	}
	l.log.Debug("reserved version", "path", l.path, "version", next.String())
	return next, nil
}
