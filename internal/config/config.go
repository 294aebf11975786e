// Package config loads costgraph settings.
//
// Sources, lowest priority first:
//
//  1. Built-in defaults
//  2. The TOML file (~/.config/costgraph/config.toml, or --config)
//  3. A .env file in the working directory
//  4. COSTGRAPH_* environment variables
//
// The merged result is validated before use. An example file:
//
//	[rates]
//	Design-simple = 120
//	Coding-complex = 400
//
//	[export]
//	padding = 64
//	scale = 2
//	background = "#ffffff"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[server]
//	addr = "127.0.0.1:8080"
package config

import (
	"time"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/pipeline"
)

// Config is the merged configuration.
type Config struct {
	Rates  map[string]float64 `toml:"rates" validate:"dive,gte=0"`
	Export ExportConfig       `toml:"export"`
	Cache  CacheConfig        `toml:"cache"`
	Server ServerConfig       `toml:"server"`

	// Sources lists where values came from, in load order.
	Sources []string `toml:"-"`
}

// ExportConfig holds raster and diagram export settings.
type ExportConfig struct {
	Padding    float64 `toml:"padding" validate:"gte=0"`
	Scale      float64 `toml:"scale" validate:"gte=0,lte=8"`
	Background string  `toml:"background" validate:"omitempty,hexcolor"`
	NodeWidth  float64 `toml:"node_width" validate:"gte=0"`
	NodeHeight float64 `toml:"node_height" validate:"gte=0"`
	Detailed   bool    `toml:"detailed"`
}

// CacheConfig selects and tunes the artifact cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url" validate:"omitempty,url"`
	TTL      string `toml:"ttl" validate:"omitempty,duration"`
}

// ServerConfig configures `costgraph serve`.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rates: map[string]float64{},
		Export: ExportConfig{
			Background: pipeline.DefaultBackground,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// RateTable returns the configured rates with defaults for missing keys.
// Keys are matched case-insensitively.
func (c *Config) RateTable() (estimate.Rates, error) {
	rates := estimate.DefaultRates()
	for k, v := range c.Rates {
		key, err := estimate.ParseKey(k)
		if err != nil {
			return nil, err
		}
		if err := rates.Set(key, v); err != nil {
			return nil, err
		}
	}
	return rates, nil
}

// CacheTTL returns the configured artifact TTL, or cache.ArtifactTTL.
func (c *Config) CacheTTL() time.Duration {
	if d, err := time.ParseDuration(c.Cache.TTL); err == nil && c.Cache.TTL != "" {
		return d
	}
	return cache.ArtifactTTL
}

// PipelineOptions returns export options for formats.
func (c *Config) PipelineOptions(formats []string) pipeline.Options {
	return pipeline.Options{
		Formats:    formats,
		Padding:    c.Export.Padding,
		Scale:      c.Export.Scale,
		Background: c.Export.Background,
		NodeWidth:  c.Export.NodeWidth,
		NodeHeight: c.Export.NodeHeight,
		Detailed:   c.Export.Detailed,
	}
}
