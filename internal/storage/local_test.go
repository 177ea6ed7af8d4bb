package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestStoreAndOpenRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	content := "screenshot bytes"
	key, size, err := store.Store(strings.NewReader(content), "screen.PNG")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q, want lowercased .png extension", key)
	}
	if strings.ContainsAny(key, `/\`) {
		t.Errorf("key %q contains path separators", key)
	}

	blob, err := store.Open(key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer blob.Close()
	data, err := io.ReadAll(blob)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestStoreGeneratesUniqueKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	first, _, err := store.Store(strings.NewReader("a"), "same.txt")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	second, _, err := store.Store(strings.NewReader("b"), "same.txt")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if first == second {
		t.Errorf("both uploads produced key %q", first)
	}
}

func TestOpenRejectsTraversalKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	for _, key := range []string{"", "../secret", "a/b", `a\b`, "..", "nope.txt"} {
		if _, err := store.Open(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) = %v, want ErrNotFound", key, err)
		}
	}
}
