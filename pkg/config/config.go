// Package config loads the optional nodemap.toml configuration file and
// applies defaults for everything it leaves out.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nodemap/nodemap/pkg/errors"
	"github.com/nodemap/nodemap/pkg/layout"
)

// Backend names accepted in the [store] and [cache] sections.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"

	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// FileName is the configuration file looked up inside the config directory.
const FileName = "nodemap.toml"

// Config is the full application configuration.
type Config struct {
	Autosave AutosaveConfig `toml:"autosave"`
	Layout   layout.Options `toml:"layout"`
	Store    StoreConfig    `toml:"store"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// AutosaveConfig controls the debounced save cycle.
type AutosaveConfig struct {
	// DelayMS is the quiet window in milliseconds between the last mutation
	// and the automatic save.
	DelayMS int `toml:"delay_ms"`
}

// Delay returns the autosave window as a duration.
func (a AutosaveConfig) Delay() time.Duration {
	return time.Duration(a.DelayMS) * time.Millisecond
}

// StoreConfig selects and parameterizes the persistence backend.
type StoreConfig struct {
	Backend string `toml:"backend"`

	// Mongo settings, used when Backend is "mongo".
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects and parameterizes the render/layout cache.
type CacheConfig struct {
	Backend string `toml:"backend"`

	// TTLHours is the cache entry lifetime. Zero means no expiry.
	TTLHours int `toml:"ttl_hours"`

	// Redis settings, used when Backend is "redis".
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// TTL returns the cache lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig controls the local HTTP presentation server.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Autosave: AutosaveConfig{DelayMS: 800},
		Layout: layout.Options{
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			HGap:       layout.DefaultHGap,
			VGap:       layout.DefaultVGap,
		},
		Store: StoreConfig{
			Backend:       StoreFile,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "nodemap",
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			TTLHours:  24 * 7,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Listen: "127.0.0.1:7410"},
	}
}

// Load reads the configuration at path, layering it over the defaults. A
// missing file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeParse, err, "parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads from the standard config directory.
func LoadDefault() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), err
	}
	return Load(filepath.Join(dir, FileName))
}

// Dir returns the per-user configuration directory, honoring
// XDG_CONFIG_HOME.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "resolve config dir")
	}
	return filepath.Join(base, "nodemap"), nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case StoreFile, StoreMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Autosave.DelayMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "autosave delay must not be negative")
	}
	return nil
}
