package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/fibsem-portal/server/internal/cache"
	"github.com/fibsem-portal/server/internal/catalog"
	"github.com/fibsem-portal/server/internal/dataset"
	"github.com/fibsem-portal/server/internal/neuroglancer"
	"github.com/fibsem-portal/server/internal/render"
)

// DatasetSummary is the list-view shape of a dataset.
type DatasetSummary struct {
	Key     string        `json:"key"`
	Title   string        `json:"title"`
	Volumes int           `json:"volumes"`
	Views   int           `json:"views"`
	Tags    []dataset.Tag `json:"tags"`
}

// datasetsHandler returns the list of datasets in the current catalog.
func datasetsHandler(store *catalog.Store, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()

		summaries := make([]DatasetSummary, 0, len(snap.Keys))
		for _, key := range snap.Keys {
			ds := snap.Datasets[key]
			summaries = append(summaries, DatasetSummary{
				Key:     key,
				Title:   ds.Title,
				Volumes: ds.NumVolumes(),
				Views:   len(ds.Views),
				Tags:    ds.Tags.Tags(),
			})
		}

		writeJSON(w, map[string]interface{}{
			"title":     title,
			"count":     len(summaries),
			"loaded_at": snap.LoadedAt,
			"datasets":  summaries,
		})
	}
}

// VolumeInfo is the detail-view shape of one volume.
type VolumeInfo struct {
	Key         string              `json:"key"`
	Name        string              `json:"name"`
	ContentType dataset.ContentType `json:"contentType"`
	SampleType  dataset.SampleType  `json:"sampleType"`
	Description string              `json:"description,omitempty"`
	Subsources  int                 `json:"subsources"`
}

// ViewInfo is the detail-view shape of one view preset.
type ViewInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Sources     []string `json:"sources"`
}

// datasetDetailHandler returns metadata, volumes, views and tags for one
// dataset.
func datasetDetailHandler(w http.ResponseWriter, r *http.Request) {
	ds := getDataset(r)
	if ds == nil {
		http.Error(w, "dataset not resolved", http.StatusInternalServerError)
		return
	}

	volumes := make([]VolumeInfo, 0, ds.NumVolumes())
	for _, key := range ds.VolumeKeys() {
		vol, _ := ds.Volume(key)
		volumes = append(volumes, VolumeInfo{
			Key:         key,
			Name:        vol.Name,
			ContentType: vol.ContentType,
			SampleType:  vol.SampleType,
			Description: vol.Description,
			Subsources:  len(vol.Subsources),
		})
	}

	views := make([]ViewInfo, 0, len(ds.Views))
	for _, v := range ds.Views {
		views = append(views, ViewInfo{Name: v.Name, Description: v.Description, Sources: v.Sources})
	}

	writeJSON(w, map[string]interface{}{
		"key":       ds.Key,
		"title":     ds.Title,
		"metadata":  ds.Metadata,
		"thumbnail": "/api/datasets/" + ds.Key + "/thumbnail",
		"volumes":   volumes,
		"views":     views,
		"tags":      ds.Tags.Tags(),
	})
}

// TagCount is one catalog-wide tag facet with its dataset count.
type TagCount struct {
	Value    string              `json:"value"`
	Category dataset.TagCategory `json:"category"`
	Count    int                 `json:"count"`
}

// tagsHandler aggregates tags across the catalog for faceted filtering.
func tagsHandler(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()

		counts := make(map[dataset.Tag]int)
		for _, key := range snap.Keys {
			for _, tag := range snap.Datasets[key].Tags.Tags() {
				counts[tag]++
			}
		}

		tags := make([]TagCount, 0, len(counts))
		for tag, n := range counts {
			tags = append(tags, TagCount{Value: tag.Value, Category: tag.Category, Count: n})
		}
		sort.Slice(tags, func(i, j int) bool {
			if tags[i].Category != tags[j].Category {
				return tags[i].Category < tags[j].Category
			}
			return tags[i].Value < tags[j].Value
		})

		writeJSON(w, map[string]interface{}{"tags": tags})
	}
}

// statsHandler reports catalog and cache statistics.
func statsHandler(store *catalog.Store, cm *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()
		writeJSON(w, map[string]interface{}{
			"datasets":  len(snap.Keys),
			"loaded_at": snap.LoadedAt,
			"cache":     cm.Stats(),
		})
	}
}

// reloadHandler forces a catalog reload.
func reloadHandler(reloader *catalog.Reloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reloader == nil {
			http.Error(w, "reload not available", http.StatusServiceUnavailable)
			return
		}
		count, err := reloader.ReloadNow(r.Context())
		if err != nil {
			log.Printf("[api] reload failed: %v", err)
			http.Error(w, "catalog reload failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]interface{}{"datasets": count})
	}
}

// thumbnailHandler serves the dataset thumbnail: fetched bytes when the
// catalog has them, otherwise a generated placeholder. Both are cached.
func thumbnailHandler(store *catalog.Store, cm *cache.Manager, tn *render.Thumbnailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := getDataset(r)
		if ds == nil {
			http.Error(w, "dataset not resolved", http.StatusInternalServerError)
			return
		}

		key := cache.ThumbKey(ds.Key)
		if data, ok := cm.GetThumb(key); ok {
			serveThumb(w, data)
			return
		}

		data := store.Snapshot().Thumbs[ds.Key]
		if data == nil {
			var err error
			data, err = tn.Placeholder(ds.Key)
			if err != nil {
				http.Error(w, "thumbnail render failed", http.StatusInternalServerError)
				return
			}
		}
		if err := cm.SetThumb(key, data); err != nil {
			log.Printf("[api] thumbnail cache write failed for %s: %v", ds.Key, err)
		}
		serveThumb(w, data)
	}
}

func serveThumb(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// LinkRequest selects the layers and view for a viewer link.
type LinkRequest struct {
	Volumes []string `json:"volumes"`
	View    string   `json:"view"`
}

// linkHandler compiles the selected layers and view into a shareable viewer
// URL. An empty selection is refused rather than producing a broken link.
func linkHandler(cm *cache.Manager, viewerURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := getDataset(r)
		if ds == nil {
			http.Error(w, "dataset not resolved", http.StatusInternalServerError)
			return
		}

		var req LinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		view := ds.Views[0]
		if req.View != "" {
			var ok bool
			view, ok = ds.View(req.View)
			if !ok {
				http.Error(w, "view not found: "+req.View, http.StatusBadRequest)
				return
			}
		}

		cacheKey := cache.LinkKey(ds.Key, req.Volumes, view.Name, viewerURL)
		if link, ok := cm.GetLink(cacheKey); ok {
			writeJSON(w, map[string]interface{}{"url": link, "view": view.Name})
			return
		}

		state, err := neuroglancer.CompileState(ds, req.Volumes, view)
		if err != nil {
			if errors.Is(err, neuroglancer.ErrEmptySelection) {
				http.Error(w, "nothing selected", http.StatusBadRequest)
				return
			}
			log.Printf("[api] link compilation failed for %s: %v", ds.Key, err)
			http.Error(w, "link compilation failed", http.StatusInternalServerError)
			return
		}

		link, err := neuroglancer.ViewerURL(viewerURL, state)
		if err != nil {
			log.Printf("[api] link serialization failed for %s: %v", ds.Key, err)
			http.Error(w, "link serialization failed", http.StatusInternalServerError)
			return
		}

		cm.SetLink(cacheKey, link)
		writeJSON(w, map[string]interface{}{"url": link, "view": view.Name})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
