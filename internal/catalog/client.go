// Package catalog fetches the remote dataset catalog (index, manifests,
// thumbnails), builds the immutable dataset snapshot and serves it through an
// atomically swapped store.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrNotFound reports a 404 from the catalog endpoint.
var ErrNotFound = errors.New("not found")

// Payload magic bytes for objects stored pre-compressed (e.g. *.json.gz on a
// bucket served without a Content-Encoding header).
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Client fetches catalog objects from a remote endpoint. Manifest payloads
// compressed with gzip or zstd are decoded transparently.
type Client struct {
	endpoint string
	httpc    *http.Client
	zstd     *zstd.Decoder
}

// NewClient creates a catalog client for the given endpoint (an HTTP(S) base
// URL under which index.json and per-dataset directories live).
func NewClient(endpoint string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("catalog endpoint is empty")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpc: &http.Client{
			Timeout: 30 * time.Second,
			// Compression is handled here, by header and by payload
			// sniffing, so the transport must not second-guess it.
			Transport: &http.Transport{DisableCompression: true},
		},
		zstd: dec,
	}, nil
}

// FetchIndex retrieves the catalog index: a mapping of dataset key to
// manifest location.
func (c *Client) FetchIndex(ctx context.Context) (map[string]string, error) {
	data, err := c.get(ctx, c.endpoint+"/index.json")
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	index, err := decodeIndex(data)
	if err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return index, nil
}

// FetchManifest retrieves a dataset manifest from its index location.
func (c *Client) FetchManifest(ctx context.Context, location string) ([]byte, error) {
	return c.get(ctx, c.ManifestURL(location))
}

// FetchThumbnail retrieves a dataset thumbnail. A missing thumbnail returns
// ErrNotFound; callers substitute a generated placeholder.
func (c *Client) FetchThumbnail(ctx context.Context, location string) ([]byte, error) {
	return c.get(ctx, c.ThumbnailURL(location))
}

// ManifestURL resolves the manifest object URL for an index location.
func (c *Client) ManifestURL(location string) string {
	resolved := c.resolve(location)
	if strings.HasSuffix(resolved, ".json") {
		return resolved
	}
	return resolved + "/manifest.json"
}

// ThumbnailURL resolves the thumbnail object URL for an index location.
func (c *Client) ThumbnailURL(location string) string {
	resolved := c.resolve(location)
	if strings.HasSuffix(resolved, ".json") {
		resolved = resolved[:strings.LastIndex(resolved, "/")]
	}
	return resolved + "/thumbnail.jpg"
}

// resolve makes an index location absolute against the endpoint.
func (c *Client) resolve(location string) string {
	if strings.Contains(location, "://") {
		return strings.TrimSuffix(location, "/")
	}
	return c.endpoint + "/" + strings.Trim(location, "/")
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "gzip, zstd")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", url, err)
	}
	return c.decompress(data, resp.Header.Get("Content-Encoding"))
}

func (c *Client) decompress(data []byte, encoding string) ([]byte, error) {
	switch {
	case encoding == "zstd" || bytes.HasPrefix(data, zstdMagic):
		return c.zstd.DecodeAll(data, nil)
	case encoding == "gzip" || bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return data, nil
	}
}
