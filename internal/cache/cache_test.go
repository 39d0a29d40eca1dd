package cache

import (
	"testing"
	"time"
)

func TestLinkKey(t *testing.T) {
	base := LinkKey("jrc_hela-2", []string{"em", "mito"}, "Default view", "https://viewer.example.org/")

	t.Run("stable", func(t *testing.T) {
		again := LinkKey("jrc_hela-2", []string{"em", "mito"}, "Default view", "https://viewer.example.org/")
		if again != base {
			t.Fatalf("expected stable key, got %q vs %q", base, again)
		}
	})

	t.Run("orderSensitive", func(t *testing.T) {
		// Selection order determines layer order, so it must change the key.
		swapped := LinkKey("jrc_hela-2", []string{"mito", "em"}, "Default view", "https://viewer.example.org/")
		if swapped == base {
			t.Fatal("expected different key for different selection order")
		}
	})

	t.Run("viewSensitive", func(t *testing.T) {
		other := LinkKey("jrc_hela-2", []string{"em", "mito"}, "Nucleus", "https://viewer.example.org/")
		if other == base {
			t.Fatal("expected different key for different view")
		}
	})

	t.Run("noDelimiterCollision", func(t *testing.T) {
		a := LinkKey("ds", []string{"ab", "c"}, "v", "b")
		b := LinkKey("ds", []string{"a", "bc"}, "v", "b")
		if a == b {
			t.Fatal("volume list boundaries must not collide")
		}
	})
}

func TestManagerThumbAndLink(t *testing.T) {
	m, err := NewManager(Config{ThumbCacheSizeMB: 16, ThumbTTL: time.Minute, LinkCacheSize: 8})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close()

	if _, ok := m.GetThumb(ThumbKey("ds")); ok {
		t.Fatal("unexpected cache hit on empty cache")
	}
	if err := m.SetThumb(ThumbKey("ds"), []byte{1, 2, 3}); err != nil {
		t.Fatalf("SetThumb failed: %v", err)
	}
	data, ok := m.GetThumb(ThumbKey("ds"))
	if !ok || len(data) != 3 {
		t.Fatalf("thumb not retrieved: ok=%v data=%v", ok, data)
	}

	key := LinkKey("ds", []string{"em"}, "v", "b")
	if _, ok := m.GetLink(key); ok {
		t.Fatal("unexpected link hit on empty cache")
	}
	m.SetLink(key, "https://viewer.example.org/#!abc")
	link, ok := m.GetLink(key)
	if !ok || link != "https://viewer.example.org/#!abc" {
		t.Fatalf("link not retrieved: ok=%v link=%q", ok, link)
	}
}
