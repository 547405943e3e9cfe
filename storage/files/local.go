// Package files provides the note file storage backends.
package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core"
)

// localStorage writes files under a directory on the server's disk and
// serves them back from the /uploads route.
type localStorage struct {
	dir     string
	baseURL string
}

var _ core.FileStorage = (*localStorage)(nil)

func NewLocalStorage(conf *core.Config) (*localStorage, error) {
	dir := conf.Storage.LocalDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(conf.WorkDir, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating uploads dir")
	}
	return &localStorage{
		dir:     dir,
		baseURL: strings.TrimRight(conf.FrontendBaseURL, "/"),
	}, nil
}

// Dir is the absolute directory served by the static /uploads route.
func (st *localStorage) Dir() string { return st.dir }

func (st *localStorage) Save(_ context.Context, key, _ string, r io.Reader) error {
	// keys are generated server-side but never trust them as paths
	path := filepath.Join(st.dir, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return errors.Wrap(err, "writing file")
	}
	return errors.Wrap(f.Close(), "closing file")
}

func (st *localStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(st.dir, filepath.Base(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "removing file")
}

func (st *localStorage) URL(key string) string {
	return st.baseURL + "/uploads/" + key
}
