package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// FileSystem reads records from a local directory tree.
type FileSystem struct {
	root        string
	concurrency int
}

// NewFileSystem creates a source rooted at dir.
func NewFileSystem(dir string, concurrency int) *FileSystem {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &FileSystem{root: dir, concurrency: concurrency}
}

// Root returns the directory the source reads from.
func (f *FileSystem) Root() string {
	return f.root
}

// Read implements Source.
func (f *FileSystem) Read(ctx context.Context, pattern string) ([]Record, error) {
	full := filepath.Join(f.root, filepath.FromSlash(pattern))
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", m, err)
		}
		if info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, full)
	}
	sort.Strings(files)

	logging.Debug().
		Str("root", f.root).
		Str("pattern", pattern).
		Int("files", len(files)).
		Msg("Reading files")

	perFile := make([][]Record, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs, err := f.readFile(file)
			if err != nil {
				return err
			}
			perFile[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return flatten(perFile), nil
}

func (f *FileSystem) readFile(file string) ([]Record, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer fh.Close()

	rel, err := filepath.Rel(f.root, file)
	if err != nil {
		rel = file
	}
	return splitRecords(filepath.ToSlash(rel), fh)
}

func flatten(perFile [][]Record) []Record {
	total := 0
	for _, recs := range perFile {
		total += len(recs)
	}
	out := make([]Record, 0, total)
	for _, recs := range perFile {
		out = append(out, recs...)
	}
	return out
}
