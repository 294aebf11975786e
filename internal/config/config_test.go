package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// isolate points the default path and dotenv lookup at empty locations.
func isolate(t *testing.T) Options {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(isolate(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	rates, err := cfg.RateTable()
	if err != nil {
		t.Fatal(err)
	}
	if rates.Rate(estimate.DesignComplex) != 300 {
		t.Errorf("rates = %v", rates)
	}
	if cfg.CacheTTL() != cache.ArtifactTTL {
		t.Errorf("ttl = %v", cfg.CacheTTL())
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("sources = %v, want defaults + environment", cfg.Sources)
	}
}

func TestLoadFile(t *testing.T) {
	opts := isolate(t)
	opts.Path = writeFile(t, "config.toml", `
[rates]
design-simple = 120
Coding-complex = 400

[export]
padding = 32
scale = 2
background = "#000000"

[cache]
ttl = "72h"

[server]
addr = "0.0.0.0:9000"
`)
	cfg, err := Load(opts)
	if err != nil {
		t.Fatal(err)
	}
	rates, _ := cfg.RateTable()
	if rates.Rate(estimate.DesignSimple) != 120 || rates.Rate(estimate.CodingComplex) != 400 {
		t.Errorf("rates = %v", rates)
	}
	if _, ok := cfg.Rates["Design-simple"]; !ok {
		t.Errorf("rate keys not canonical: %v", cfg.Rates)
	}
	if cfg.Export.Padding != 32 || cfg.Export.Scale != 2 {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.CacheTTL() != 72*time.Hour {
		t.Errorf("ttl = %v", cfg.CacheTTL())
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}

	po := cfg.PipelineOptions([]string{"png"})
	if po.Scale != 2 || po.Background != "#000000" || po.Padding != 32 {
		t.Errorf("pipeline options = %+v", po)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	opts := isolate(t)
	opts.Path = writeFile(t, "config.toml", "[rates]\nDesign-simple = 120\n[export]\nscale = 2\n")
	t.Setenv("COSTGRAPH_RATE_DESIGN_SIMPLE", "130")
	t.Setenv("COSTGRAPH_EXPORT_SCALE", "3")
	t.Setenv("COSTGRAPH_CACHE_DISABLED", "true")

	cfg, err := Load(opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rates["Design-simple"] != 130 {
		t.Errorf("rate = %v, want env value", cfg.Rates["Design-simple"])
	}
	if cfg.Export.Scale != 3 || !cfg.Cache.Disabled {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadDotenv(t *testing.T) {
	opts := isolate(t)
	opts.EnvFile = writeFile(t, ".env", "COSTGRAPH_SERVER_ADDR=localhost:7000\n")
	t.Setenv("COSTGRAPH_SERVER_ADDR", "")
	os.Unsetenv("COSTGRAPH_SERVER_ADDR")

	cfg, err := Load(opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "localhost:7000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		code errors.Code
	}{
		{"unknown rate key", "[rates]\nTesting-simple = 1\n", nil, errors.ErrCodeInvalidRateKey},
		{"negative rate", "[rates]\nDesign-simple = -5\n", nil, errors.ErrCodeInvalidInput},
		{"bad background", "[export]\nbackground = \"white\"\n", nil, errors.ErrCodeInvalidInput},
		{"scale too large", "[export]\nscale = 50\n", nil, errors.ErrCodeInvalidInput},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", nil, errors.ErrCodeInvalidInput},
		{"unknown key", "[export]\ncolour = \"red\"\n", nil, errors.ErrCodeInvalidInput},
		{"nan rate", "[rates]\nDesign-simple = nan\n", nil, errors.ErrCodeInvalidInput},
		{"inf rate", "[rates]\nCoding-complex = inf\n", nil, errors.ErrCodeInvalidInput},
		{"nan env rate", "", map[string]string{"COSTGRAPH_RATE_DESIGN_SIMPLE": "NaN"}, errors.ErrCodeInvalidInput},
		{"bad toml", "[export\n", nil, errors.ErrCodeInvalidInput},
		{"bad env number", "", map[string]string{"COSTGRAPH_EXPORT_PADDING": "wide"}, errors.ErrCodeInvalidInput},
		{"empty addr", "[server]\naddr = \"\"\n", nil, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := isolate(t)
			opts.Path = writeFile(t, "config.toml", tt.file)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	opts := isolate(t)
	opts.Path = filepath.Join(t.TempDir(), "nope.toml")
	if _, err := Load(opts); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/xdg/costgraph/config.toml" {
		t.Errorf("path = %q", p)
	}
}
