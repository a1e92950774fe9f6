// Package output opens the portfolio document a run appends to.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout formats run timestamps in file names, e.g. 20240131_174502.
const timestampLayout = "20060102_150405"

// Options describes where the document goes.
type Options struct {
	// Path overrides the generated file name when set.
	Path string
	// Dir holds the generated file; defaults to the working directory.
	Dir string
	// DryRun discards all writes and touches nothing on disk.
	DryRun bool
	// Now returns the run time; defaults to time.Now.
	Now func() time.Time
}

// Sink is the append-only destination of one run.
type Sink struct {
	w       io.Writer
	file    *os.File
	path    string
	rotated string
	dryRun  bool
}

// DefaultName returns the document name for a run started at t.
func DefaultName(t time.Time) string {
	return fmt.Sprintf("Portfolio_%s.md", t.Format(timestampLayout))
}

// Open prepares the sink. An existing file at the target path is renamed
// aside, never overwritten. In dry-run mode nothing is created or renamed.
func Open(opts Options) (*Sink, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	ts := now()

	path := opts.Path
	if path == "" {
		path = filepath.Join(opts.Dir, DefaultName(ts))
	}

	if opts.DryRun {
		return &Sink{w: io.Discard, path: path, dryRun: true}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	rotated, err := rotateAside(path, ts)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return &Sink{w: f, file: f, path: path, rotated: rotated}, nil
}

// rotateAside renames an existing file at path and returns its new name, or
// "" when there was nothing to move.
func rotateAside(path string, ts time.Time) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", path, err)
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	candidate := fmt.Sprintf("%s_old_%s%s", base, ts.Format(timestampLayout), ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			break
		}
		candidate = fmt.Sprintf("%s_old_%s_%d%s", base, ts.Format(timestampLayout), i, ext)
	}

	if err := os.Rename(path, candidate); err != nil {
		return "", fmt.Errorf("failed to move previous %s aside: %w", path, err)
	}
	return candidate, nil
}

func (s *Sink) Write(p []byte) (int, error) { return s.w.Write(p) }

// Close releases the file. It is safe to call more than once.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Path is the document path; in dry-run mode, the path that would have been used.
func (s *Sink) Path() string { return s.path }

// Rotated is where a previous document was moved, or "".
func (s *Sink) Rotated() string { return s.rotated }

// DryRun reports whether writes are discarded.
func (s *Sink) DryRun() bool { return s.dryRun }
