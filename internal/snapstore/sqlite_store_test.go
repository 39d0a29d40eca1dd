package snapstore

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	entries := []Entry{
		{Key: "jrc_hela-2", Manifest: []byte(`{"metadata":{}}`), Thumbnail: []byte{0x89, 0x50}, FetchedAt: time.Now().UTC()},
		{Key: "jrc_ctl-id8-1", Manifest: []byte(`{"sources":{}}`)},
	}
	if err := store.Save(entries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	// Ordered by key.
	if loaded[0].Key != "jrc_ctl-id8-1" || loaded[1].Key != "jrc_hela-2" {
		t.Fatalf("unexpected order: %q, %q", loaded[0].Key, loaded[1].Key)
	}
	if !bytes.Equal(loaded[1].Manifest, entries[0].Manifest) {
		t.Errorf("manifest bytes mismatch: %q", loaded[1].Manifest)
	}
	if !bytes.Equal(loaded[1].Thumbnail, entries[0].Thumbnail) {
		t.Errorf("thumbnail bytes mismatch")
	}
	if loaded[0].FetchedAt.IsZero() {
		t.Error("expected zero FetchedAt to be filled on save")
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Save([]Entry{{Key: "a", Manifest: []byte("{}")}, {Key: "b", Manifest: []byte("{}")}}); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := store.Save([]Entry{{Key: "c", Manifest: []byte("{}")}}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected old entries to be replaced, count = %d", n)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Key != "c" {
		t.Fatalf("unexpected entries after replace: %v", loaded)
	}
}

func TestLoadEmptyStore(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.sqlite"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(loaded))
	}
}
