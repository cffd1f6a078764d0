package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildKey(t *testing.T) {
	key := BuildKey(PurposeProjects, "proj-1", "report.pdf")

	if !strings.HasPrefix(key, "projects/proj-1/") {
		t.Errorf("expected purpose/scope prefix, got %s", key)
	}
	if !strings.HasSuffix(key, "_report.pdf") {
		t.Errorf("expected original name suffix, got %s", key)
	}
	if key == BuildKey(PurposeProjects, "proj-1", "report.pdf") {
		t.Error("two keys for the same name must differ")
	}
}

func TestBuildKeyStripsPath(t *testing.T) {
	key := BuildKey(PurposeChat, "proj-1", "../../etc/passwd")
	if strings.Contains(key, "..") {
		t.Errorf("key must not contain path traversal, got %s", key)
	}
}

func TestSaveAndDelete(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	key := BuildKey(PurposeProjects, "proj-1", "notes.txt")

	size, err := store.Save(key, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}

	path := filepath.Join(store.Root(), filepath.FromSlash(key))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("object not on disk: %v", err)
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("object still on disk after delete")
	}
}

func TestDeleteMissingObject(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	if err := store.Delete("projects/proj-1/gone.txt"); err != nil {
		t.Errorf("deleting a missing object must not fail: %v", err)
	}
}

func TestSaveRejectsBadKeys(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	for _, key := range []string{"", "/abs/path", "a//b", "projects/../secret"} {
		if _, err := store.Save(key, strings.NewReader("x")); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestPublicURL(t *testing.T) {
	if got := PublicURL("avatars/u1/abc_photo.png"); got != "/uploads/avatars/u1/abc_photo.png" {
		t.Errorf("unexpected public URL %s", got)
	}
}
