package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FSLoader reads bundles from a file system, e.g. the embedded defaults or a directory.
type FSLoader struct {
	fsys fs.FS
}

func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// NewDirectoryLoader reads "<baseName>_<lang>.properties" files from dir.
func NewDirectoryLoader(dir string) *FSLoader {
	return NewFSLoader(os.DirFS(dir))
}

func (l *FSLoader) Load(ctx context.Context, baseName, lang string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := ResourceName(baseName, lang)
	data, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ResourceLoadError{BaseName: baseName, Lang: lang, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &ResourceLoadError{BaseName: baseName, Lang: lang, Err: fmt.Errorf("fs.ReadFile > %w", err)}
	}

	b, err := Parse(data)
	if err != nil {
		return nil, &ResourceLoadError{BaseName: baseName, Lang: lang, Err: err}
	}
	return b, nil
}

var _ Loader = (*FSLoader)(nil)
