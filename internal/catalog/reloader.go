package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fibsem-portal/server/internal/snapstore"
)

// Reloader refreshes the catalog on a fixed period and on demand. A failed
// reload keeps the previous snapshot in place.
type Reloader struct {
	loader *Loader
	store  *Store
	snap   *snapstore.Store // optional persistence, may be nil
	period time.Duration

	mu       sync.Mutex // serializes reloads
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewReloader creates a reloader. A period <= 0 disables the periodic
// refresh; ReloadNow still works.
func NewReloader(loader *Loader, store *Store, snap *snapstore.Store, period time.Duration) *Reloader {
	return &Reloader{
		loader: loader,
		store:  store,
		snap:   snap,
		period: period,
		stopCh: make(chan struct{}),
	}
}

// Start launches the periodic refresh goroutine.
func (r *Reloader) Start() {
	if r.period <= 0 {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := r.ReloadNow(context.Background()); err != nil {
					log.Printf("[reloader] reload failed, keeping previous catalog: %v", err)
				}
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the periodic refresh and waits for it to finish.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
}

// ReloadNow fetches a fresh catalog and swaps it in, returning the dataset
// count. On error the store is left untouched.
func (r *Reloader) ReloadNow(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.loader.Load(ctx)
	if err != nil {
		return 0, err
	}
	r.store.Swap(snap)
	log.Printf("[reloader] catalog reloaded: %s", describeSize(snap))

	if r.snap != nil {
		if err := r.snap.Save(snap.Entries()); err != nil {
			log.Printf("[reloader] failed to persist snapshot: %v", err)
		}
	}
	return len(snap.Keys), nil
}
