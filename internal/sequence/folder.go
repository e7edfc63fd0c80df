package sequence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// OpenFolder opens the files directly inside dir as a sequence, stacked in
// lexicographic order of their names. Subdirectories are not entered, and
// hidden files (leading dot) are skipped. When the loader implements
// Supports(name string) bool, only names it accepts are used.
//
// OpenFolder fails with an error matching ErrInvalidSequence if dir cannot be
// read or holds no eligible file.
func OpenFolder(ctx context.Context, dir string, opts ...Option) (*Sequence, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	paths, err := listBands(dir, cfg.loader)
	if err != nil {
		return nil, err
	}
	return Open(ctx, paths, opts...)
}

// listBands returns the eligible files of dir in name order.
func listBands(dir string, loader BandLoader) ([]string, error) {
	// os.ReadDir sorts entries by file name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, invalidSequence("failed to read folder %s: %v", dir, err)
	}

	filter, _ := loader.(nameFilter)
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !isRegular(dir, e) {
			continue
		}
		if filter != nil && !filter.Supports(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}

	if len(paths) == 0 {
		return nil, invalidSequence("folder %s holds no eligible band files", dir)
	}
	return paths, nil
}

// isRegular reports whether e is a regular file, following symlinks.
func isRegular(dir string, e os.DirEntry) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}
