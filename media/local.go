package media

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalStore writes files below a directory on disk, which the HTTP
// server exposes under baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "create media root %s", root)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(ctx context.Context, prefix, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := NewKey(prefix, filename)
	dest := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create media folder")
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(err, "create media file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", errors.Wrap(err, "write media file")
	}
	return key, nil
}

func (s *LocalStore) URL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}
