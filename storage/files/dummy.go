package files

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core"
)

// dummyStorage keeps files in memory. Test use only.
type dummyStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ core.FileStorage = (*dummyStorage)(nil)

func NewDummyStorage() *dummyStorage {
	return &dummyStorage{files: make(map[string][]byte)}
}

func (st *dummyStorage) Save(_ context.Context, key, _ string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading file")
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.files[key] = data
	return nil
}

func (st *dummyStorage) Delete(_ context.Context, key string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.files, key)
	return nil
}

func (st *dummyStorage) URL(key string) string {
	return "http://localhost/uploads/" + key
}

// Contents returns the stored bytes for key, if any.
func (st *dummyStorage) Contents(key string) ([]byte, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	data, ok := st.files[key]
	return data, ok
}
