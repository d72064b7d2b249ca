package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"docprint/internal/codec"
)

// CollectFiles expands paths into the doc files they name. Directories are
// walked recursively and contribute files with a known doc extension. A file
// named directly is kept when it has a doc extension or when anyExt is set
// (the input format is forced). The result is sorted and free of duplicates.
func CollectFiles(ctx context.Context, paths []string, anyExt bool) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if !d.IsDir() && codec.IsDocFile(path) {
					addFile(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		if anyExt || codec.IsDocFile(p) {
			addFile(p)
		}
	}

	sort.Strings(files)
	return files, nil
}
