package store

import (
	"io/fs"
	"os"
	"path/filepath"

	"mdlog/internal/codec"
	"mdlog/internal/errors"
	"mdlog/internal/schema"
)

// FileInfo describes one per-kind log file of a day directory.
type FileInfo struct {
	Kind    schema.Kind
	Path    string
	Present bool
	Size    int64
	Header  codec.Header
	// Err is set when the file exists but cannot be opened as a log. Sibling
	// files are inspected regardless.
	Err error
}

func (fi FileInfo) Layout() codec.Layout { return fi.Header.Layout() }

// Inspect reports the state of every conventional log file under dir.
func Inspect(dir string) ([]FileInfo, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "inspect")
	}
	if !st.IsDir() {
		return nil, errors.Wrapf(fs.ErrInvalid, "inspect %s: not a directory", dir)
	}

	out := make([]FileInfo, 0, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		out = append(out, inspectFile(filepath.Join(dir, kind.FileName()), kind))
	}
	return out, nil
}

func inspectFile(path string, kind schema.Kind) FileInfo {
	info := FileInfo{Kind: kind, Path: path}

	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return info
	}
	if err != nil {
		info.Err = err
		return info
	}
	info.Present = true
	info.Size = st.Size()

	s, err := New(Config{Path: path, Kind: kind})
	if err != nil {
		info.Err = err
		return info
	}
	defer s.Close()

	info.Header = s.Header()
	return info
}
