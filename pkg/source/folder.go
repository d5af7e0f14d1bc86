package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bgrewell/dvd-kit/pkg/consts"
	"github.com/bgrewell/dvd-kit/pkg/option"
)

// folder reads files from a VIDEO_TS directory. Names are matched case-insensitively since rips made on
// other systems often carry lower case names.
type folder struct {
	dir   string
	names map[string]string
	files []*os.File
}

// OpenFolder opens a VIDEO_TS directory, or a directory containing one.
func OpenFolder(path string, opts ...option.Option) (Source, error) {
	o := option.Apply(opts...)
	dir := path
	if !strings.EqualFold(filepath.Base(filepath.Clean(path)), consts.VIDEO_TS_DIR) {
		if st, err := os.Stat(filepath.Join(path, consts.VIDEO_TS_DIR)); err == nil && st.IsDir() {
			dir = filepath.Join(path, consts.VIDEO_TS_DIR)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	f := &folder{dir: dir, names: map[string]string{}}
	for _, e := range entries {
		if !e.IsDir() {
			f.names[strings.ToUpper(e.Name())] = e.Name()
		}
	}
	o.Logger.Named("source").Debug("opened folder", "dir", dir, "files", len(f.names))
	return newDisc(f, o.Logger.Named("source")), nil
}

// resolve returns the on-disk path of name.
func (f *folder) resolve(name string) (string, error) {
	actual, ok := f.names[strings.ToUpper(name)]
	if !ok {
		return "", &os.PathError{Op: "open", Path: filepath.Join(f.dir, name), Err: os.ErrNotExist}
	}
	return filepath.Join(f.dir, actual), nil
}

func (f *folder) readFile(name string) ([]byte, error) {
	p, err := f.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (f *folder) open(name string) (io.ReaderAt, int64, error) {
	p, err := f.resolve(name)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	f.files = append(f.files, file)
	return file, st.Size(), nil
}

func (f *folder) close() error {
	var first error
	for _, file := range f.files {
		if err := file.Close(); err != nil && first == nil {
			first = err
		}
	}
	f.files = nil
	return first
}
