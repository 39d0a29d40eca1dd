// Package render generates placeholder thumbnails using fogleman/gg.
package render

import (
	"bytes"
	"hash/fnv"
	"image/png"
	"sync"

	"github.com/fogleman/gg"

	"github.com/fibsem-portal/server/pkg/colormap"
)

// Config contains renderer configuration.
type Config struct {
	Size int
}

// Thumbnailer renders placeholder thumbnails for datasets whose manifests
// carry none, so list views stay uniform.
type Thumbnailer struct {
	config      Config
	contextPool sync.Pool
	bufferPool  sync.Pool
}

// NewThumbnailer creates a placeholder renderer.
func NewThumbnailer(cfg Config) *Thumbnailer {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	return &Thumbnailer{
		config: cfg,
		contextPool: sync.Pool{
			New: func() interface{} {
				return gg.NewContext(cfg.Size, cfg.Size)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 16*1024))
			},
		},
	}
}

// Placeholder renders a deterministic PNG placeholder for a dataset key: a
// dark canvas with a key-derived accent band and the key as a caption.
func (t *Thumbnailer) Placeholder(key string) ([]byte, error) {
	dc := t.contextPool.Get().(*gg.Context)
	defer t.contextPool.Put(dc)

	size := float64(t.config.Size)

	dc.SetHexColor("#141414")
	dc.Clear()

	// Accent band colored by a stable hash of the key.
	accent := colormap.Viridis.At(keyFraction(key))
	dc.SetColor(accent)
	dc.DrawRectangle(0, size*0.78, size, size*0.06)
	dc.Fill()

	dc.SetHexColor("#d9d9d9")
	dc.DrawStringAnchored(key, size/2, size/2, 0.5, 0.5)

	return t.encodeContext(dc)
}

func (t *Thumbnailer) encodeContext(dc *gg.Context) ([]byte, error) {
	buf := t.bufferPool.Get().(*bytes.Buffer)
	defer t.bufferPool.Put(buf)
	buf.Reset()

	if err := png.Encode(buf, dc.Image()); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// keyFraction maps a key onto [0, 1) stably across runs.
func keyFraction(key string) float64 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return float64(h.Sum32()%1000) / 1000.0
}
