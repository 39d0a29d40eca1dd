package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/fibsem-portal/server/internal/dataset"
	"github.com/fibsem-portal/server/internal/snapstore"
)

// Snapshot is one immutable build of the whole catalog. Readers always see a
// complete snapshot, never a partially loaded one.
type Snapshot struct {
	Keys     []string
	Datasets map[string]*dataset.Dataset
	Thumbs   map[string][]byte
	Raw      map[string][]byte
	LoadedAt time.Time
}

// EmptySnapshot returns a snapshot with no datasets.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Datasets: make(map[string]*dataset.Dataset),
		Thumbs:   make(map[string][]byte),
		Raw:      make(map[string][]byte),
	}
}

// Dataset looks up a dataset by key.
func (s *Snapshot) Dataset(key string) (*dataset.Dataset, bool) {
	ds, ok := s.Datasets[key]
	return ds, ok
}

// Loader builds catalog snapshots from a remote endpoint.
type Loader struct {
	client *Client
}

// NewLoader creates a loader over the given client.
func NewLoader(client *Client) *Loader {
	return &Loader{client: client}
}

func decodeIndex(data []byte) (map[string]string, error) {
	var index map[string]string
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// Load fetches the index and then every dataset's manifest and thumbnail
// concurrently, building one dataset per entry. A fetch or parse failure in
// one entry is logged and that entry skipped; the rest of the catalog loads.
// An index fetch failure yields an empty snapshot and the error.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	index, err := l.client.FetchIndex(ctx)
	if err != nil {
		return EmptySnapshot(), err
	}

	snap := EmptySnapshot()
	var mu sync.Mutex
	var wg sync.WaitGroup

	for key, location := range index {
		wg.Add(1)
		go func(key, location string) {
			defer wg.Done()

			var (
				manifest, thumb []byte
				merr, terr      error
				inner           sync.WaitGroup
			)
			inner.Add(2)
			go func() {
				defer inner.Done()
				manifest, merr = l.client.FetchManifest(ctx, location)
			}()
			go func() {
				defer inner.Done()
				thumb, terr = l.client.FetchThumbnail(ctx, location)
			}()
			inner.Wait()

			if merr != nil {
				log.Printf("[catalog] %s: manifest fetch failed, skipping: %v", key, merr)
				return
			}
			if terr != nil {
				if !errors.Is(terr, ErrNotFound) {
					log.Printf("[catalog] %s: thumbnail fetch failed: %v", key, terr)
				}
				thumb = nil
			}

			ds, err := dataset.ParseDataset(key, manifest, l.client.ThumbnailURL(location))
			if err != nil {
				log.Printf("[catalog] %s: %v, skipping", key, err)
				return
			}

			mu.Lock()
			snap.Datasets[key] = ds
			snap.Raw[key] = manifest
			if thumb != nil {
				snap.Thumbs[key] = thumb
			}
			mu.Unlock()
		}(key, location)
	}
	wg.Wait()

	finalize(snap)
	return snap, nil
}

// FromEntries rebuilds a snapshot from persisted raw bytes. Entries that no
// longer parse are skipped, mirroring remote load behavior.
func FromEntries(entries []snapstore.Entry) *Snapshot {
	snap := EmptySnapshot()
	for _, e := range entries {
		ds, err := dataset.ParseDataset(e.Key, e.Manifest, "")
		if err != nil {
			log.Printf("[catalog] snapshot entry %s: %v, skipping", e.Key, err)
			continue
		}
		snap.Datasets[e.Key] = ds
		snap.Raw[e.Key] = e.Manifest
		if len(e.Thumbnail) > 0 {
			snap.Thumbs[e.Key] = e.Thumbnail
		}
	}
	finalize(snap)
	return snap
}

// Entries converts a snapshot to its persistable form.
func (s *Snapshot) Entries() []snapstore.Entry {
	entries := make([]snapstore.Entry, 0, len(s.Keys))
	for _, key := range s.Keys {
		entries = append(entries, snapstore.Entry{
			Key:       key,
			Manifest:  s.Raw[key],
			Thumbnail: s.Thumbs[key],
			FetchedAt: s.LoadedAt,
		})
	}
	return entries
}

func finalize(snap *Snapshot) {
	snap.Keys = make([]string, 0, len(snap.Datasets))
	for key := range snap.Datasets {
		snap.Keys = append(snap.Keys, key)
	}
	sort.Strings(snap.Keys)
	snap.LoadedAt = time.Now().UTC()
}

// describeSize is used in load logging.
func describeSize(snap *Snapshot) string {
	total := 0
	for _, raw := range snap.Raw {
		total += len(raw)
	}
	for _, thumb := range snap.Thumbs {
		total += len(thumb)
	}
	return fmt.Sprintf("%d dataset(s), %d KiB fetched", len(snap.Keys), total/1024)
}
