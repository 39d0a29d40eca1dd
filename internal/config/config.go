// Package config handles configuration loading for the portal server.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Cache   CacheConfig   `yaml:"cache"`
	Render  RenderConfig  `yaml:"render"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	Title       string   `yaml:"title"`
}

// CatalogConfig contains catalog source settings.
type CatalogConfig struct {
	Endpoint      string `yaml:"endpoint"`
	ViewerURL     string `yaml:"viewer_url"`
	ReloadMinutes int    `yaml:"reload_minutes"`
	SnapshotPath  string `yaml:"snapshot_path"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	ThumbSizeMB      int `yaml:"thumb_size_mb"`
	ThumbTTLMinutes  int `yaml:"thumb_ttl_minutes"`
	LinkCacheEntries int `yaml:"link_cache_entries"`
}

// RenderConfig contains placeholder thumbnail settings.
type RenderConfig struct {
	ThumbSize int `yaml:"thumb_size"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			Title:       "FIB-SEM Portal",
		},
		Catalog: CatalogConfig{
			Endpoint:      "https://storage.example.org/catalog",
			ViewerURL:     "https://neuroglancer-demo.appspot.com/",
			ReloadMinutes: 15,
			SnapshotPath:  "./data/catalog.sqlite",
		},
		Cache: CacheConfig{
			ThumbSizeMB:      128,
			ThumbTTLMinutes:  30,
			LinkCacheEntries: 512,
		},
		Render: RenderConfig{
			ThumbSize: 256,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Server.Title == "" {
		cfg.Server.Title = defaults.Server.Title
	}
	if cfg.Catalog.Endpoint == "" {
		cfg.Catalog.Endpoint = defaults.Catalog.Endpoint
	}
	if cfg.Catalog.ViewerURL == "" {
		cfg.Catalog.ViewerURL = defaults.Catalog.ViewerURL
	}
	if cfg.Catalog.ReloadMinutes == 0 {
		cfg.Catalog.ReloadMinutes = defaults.Catalog.ReloadMinutes
	}
	if cfg.Catalog.SnapshotPath == "" {
		cfg.Catalog.SnapshotPath = defaults.Catalog.SnapshotPath
	}
	if cfg.Cache.ThumbSizeMB == 0 {
		cfg.Cache.ThumbSizeMB = defaults.Cache.ThumbSizeMB
	}
	if cfg.Cache.ThumbTTLMinutes == 0 {
		cfg.Cache.ThumbTTLMinutes = defaults.Cache.ThumbTTLMinutes
	}
	if cfg.Cache.LinkCacheEntries == 0 {
		cfg.Cache.LinkCacheEntries = defaults.Cache.LinkCacheEntries
	}
	if cfg.Render.ThumbSize == 0 {
		cfg.Render.ThumbSize = defaults.Render.ThumbSize
	}
}
