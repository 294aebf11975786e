package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
)

const (
	appName   = "costgraph"
	envPrefix = "COSTGRAPH_"
)

// Options controls where Load looks.
type Options struct {
	// Path is an explicit config file. It must exist when set; when empty the
	// default path is used and may be absent.
	Path string

	// EnvFile is the dotenv file to read; empty means ".env". Missing files
	// are ignored.
	EnvFile string
}

// DefaultPath returns $XDG_CONFIG_HOME/costgraph/config.toml, falling back to
// ~/.config/costgraph/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load merges all sources and validates the result.
func Load(opts Options) (*Config, error) {
	cfg := Default()
	cfg.Sources = []string{"defaults"}

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		err := cfg.loadFile(path)
		switch {
		case err == nil:
			if err := cfg.canonicalRates(); err != nil {
				return nil, err
			}
			cfg.Sources = append(cfg.Sources, path)
		case stderrors.Is(err, fs.ErrNotExist) && !explicit:
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		default:
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err == nil {
		cfg.Sources = append(cfg.Sources, envFile)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Sources = append(cfg.Sources, "environment")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// Environment
// =============================================================================

// applyEnv overlays COSTGRAPH_* variables. Rates use COSTGRAPH_RATE_<KEY>
// with the key upper-cased and dashes as underscores, e.g.
// COSTGRAPH_RATE_DESIGN_SIMPLE.
func (c *Config) applyEnv() error {
	if c.Rates == nil {
		c.Rates = map[string]float64{}
	}
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *float64) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	num("EXPORT_PADDING", &c.Export.Padding)
	num("EXPORT_SCALE", &c.Export.Scale)
	str("EXPORT_BACKGROUND", &c.Export.Background)
	num("EXPORT_NODE_WIDTH", &c.Export.NodeWidth)
	num("EXPORT_NODE_HEIGHT", &c.Export.NodeHeight)
	flag("EXPORT_DETAILED", &c.Export.Detailed)
	flag("CACHE_DISABLED", &c.Cache.Disabled)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_REDIS_URL", &c.Cache.RedisURL)
	str("CACHE_TTL", &c.Cache.TTL)
	str("SERVER_ADDR", &c.Server.Addr)

	for _, k := range estimate.Keys {
		name := "RATE_" + strings.ToUpper(strings.ReplaceAll(string(k), "-", "_"))
		if _, ok := os.LookupEnv(envPrefix + name); ok {
			v := c.Rates[string(k)]
			num(name, &v)
			c.Rates[string(k)] = v
		}
	}

	if len(errs) > 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, stderrors.Join(errs...), "environment")
	}
	return nil
}

// =============================================================================
// Validation
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d >= 0
	})
	return v
}

// Validate checks field constraints and rate keys.
func (c *Config) Validate() error {
	if c.Rates == nil {
		c.Rates = map[string]float64{}
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			sort.Strings(msgs)
			return errors.New(errors.ErrCodeInvalidInput, "invalid config: %s", strings.Join(msgs, "; "))
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	return c.canonicalRates()
}

// canonicalRates rewrites rate keys to their canonical spelling.
func (c *Config) canonicalRates() error {
	out := make(map[string]float64, len(c.Rates))
	for k, v := range c.Rates {
		key, err := estimate.ParseKey(k)
		if err != nil {
			return err
		}
		if !estimate.ValidRate(v) {
			return errors.New(errors.ErrCodeInvalidInput, "rate %s must be a finite, non-negative number: %v", key, v)
		}
		out[string(key)] = v
	}
	c.Rates = out
	return nil
}
