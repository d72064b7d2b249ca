package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// OutputPath is where the printed text of a doc file goes: the input path
// with its extension replaced by .txt.
func OutputPath(path string) string {
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	if out == path {
		return path + ".txt"
	}
	return out
}

// readExisting returns the current output file contents; ok is false when
// it does not exist yet.
func readExisting(path string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// writeAtomic replaces path with data through a temporary file in the same
// directory, keeping the permissions of an existing file.
func writeAtomic(path string, data []byte) (err error) {
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(f.Name(), mode); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
