package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Purposes partition the object namespace; every key starts with one.
const (
	PurposeProjects      = "projects"
	PurposeChat          = "chat"
	PurposeAnnouncements = "announcements"
	PurposeAvatars       = "avatars"
)

// DiskStore keeps objects on the local filesystem under
// <root>/<purpose>/<scope>/<uuid>_<name>. The key is also the public URL
// path below /uploads/.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (d *DiskStore) Root() string {
	return d.root
}

// BuildKey produces a collision-free key for a new object.
func BuildKey(purpose, scope, name string) string {
	name = filepath.Base(name)
	return fmt.Sprintf("%s/%s/%s_%s", purpose, scope, uuid.New().String(), name)
}

// Save streams the object to disk and returns its size.
func (d *DiskStore) Save(key string, r io.Reader) (int64, error) {
	if !validKey(key) {
		return 0, fmt.Errorf("invalid storage key: %s", key)
	}
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create storage directory: %v", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create object: %v", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write object: %v", err)
	}
	return size, nil
}

// Delete removes a stored object. A missing object is not an error.
func (d *DiskStore) Delete(key string) error {
	if !validKey(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}
	err := os.Remove(filepath.Join(d.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %v", err)
	}
	return nil
}

// PublicURL maps a key to the path the HTTP file server exposes.
func PublicURL(key string) string {
	return "/uploads/" + key
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
