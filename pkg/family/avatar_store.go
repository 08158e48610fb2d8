package family

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrAvatarNotFound = errors.New("avatar not found")

// AvatarStore keeps avatar images by family member uid.
type AvatarStore interface {
	Save(uid string, image []byte) error
	Load(uid string) ([]byte, error)
	Delete(uid string) error
}

type DiskAvatarStore struct {
	dir string
}

func NewDiskAvatarStore(dir string) *DiskAvatarStore {
	return &DiskAvatarStore{dir: dir}
}

func (s *DiskAvatarStore) path(uid string) string {
	return filepath.Join(s.dir, filepath.Base(uid)+".img")
}

func (s *DiskAvatarStore) Save(uid string, image []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return os.WriteFile(s.path(uid), image, 0644)
}

func (s *DiskAvatarStore) Load(uid string) ([]byte, error) {
	image, err := os.ReadFile(s.path(uid))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrAvatarNotFound
	}
	return image, err
}

func (s *DiskAvatarStore) Delete(uid string) error {
	err := os.Remove(s.path(uid))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
