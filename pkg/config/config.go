package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/jsonstore/pkg/errors"
	"github.com/arthur-debert/jsonstore/pkg/filesystem"
	"github.com/arthur-debert/jsonstore/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. JSONSTORE_HOME.
const EnvPrefix = "JSONSTORE_"

// DefaultIndent is the serialization indent used when none is configured.
const DefaultIndent = 2

// EnvConfigFile names a TOML defaults file to use instead of
// paths.DefaultsFile().
const EnvConfigFile = EnvPrefix + "CONFIG"

// envKeys lists the settings the environment and the defaults file may
// override. A store's name and explicit path are never shared.
var envKeys = map[string]bool{
	"home":   true,
	"base":   true,
	"indent": true,
	"delay":  true,
	"mkdir":  true,
}

// Options are the settings a caller passes when opening a store. Zero values
// mean "not set".
type Options struct {
	// Name is the file stem of the store. Required unless Path is set.
	Name string

	// Path overrides the derived <Home>/<Base>/<Name>.json location.
	Path string

	// Home overrides the config home directory.
	Home string

	// Base overrides the folder under Home.
	Base string

	// Indent is the number of spaces per level in the file. A pointer to 0
	// writes compact JSON; nil keeps the default.
	Indent *int

	// Delay coalesces writes made within the window into one.
	Delay time.Duration

	// DirMode is the mode of directories created before the first write.
	DirMode fs.FileMode
}

// Config is the resolved configuration of a store.
type Config struct {
	Name    string        `koanf:"name"`
	Path    string        `koanf:"path"`
	Home    string        `koanf:"home"`
	Base    string        `koanf:"base"`
	Indent  int           `koanf:"indent"`
	Delay   time.Duration `koanf:"delay"`
	DirMode fs.FileMode   `koanf:"mkdir"`
}

// Defaults returns the lowest-precedence layer.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"base":   paths.DefaultBase,
		"indent": DefaultIndent,
		"delay":  time.Duration(0),
		"mkdir":  uint32(filesystem.DefaultDirMode),
	}
}

// Resolve layers defaults, the user's TOML defaults file, JSONSTORE_*
// environment variables and opts, and returns the resulting configuration
// with Path always set.
func Resolve(opts Options) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User defaults file, if it exists
	if err := loadDefaultsFile(k); err != nil {
		return nil, err
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Explicit options
	if err := k.Load(confmap.Provider(opts.toMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load options")
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to unmarshal configuration")
	}

	// 6. Post-process
	if err := postProcess(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultsFilePath returns the TOML defaults file Resolve reads.
func DefaultsFilePath() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return paths.ExpandHome(p)
	}
	return paths.DefaultsFile()
}

func loadDefaultsFile(k *koanf.Koanf) error {
	path := DefaultsFilePath()
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	tempK := koanf.New(".")
	if err := tempK.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load defaults from %s", path)
	}

	shared := map[string]interface{}{}
	for key, v := range tempK.All() {
		if envKeys[key] {
			shared[key] = v
		}
	}
	if err := k.Load(confmap.Provider(shared, "."), nil); err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to merge defaults from %s", path)
	}
	return nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if !envKeys[key] {
		return ""
	}
	return key
}

func (o Options) toMap() map[string]interface{} {
	m := map[string]interface{}{}
	if o.Name != "" {
		m["name"] = o.Name
	}
	if o.Path != "" {
		m["path"] = o.Path
	}
	if o.Home != "" {
		m["home"] = o.Home
	}
	if o.Base != "" {
		m["base"] = o.Base
	}
	if o.Indent != nil {
		m["indent"] = *o.Indent
	}
	if o.Delay != 0 {
		m["delay"] = o.Delay
	}
	if o.DirMode != 0 {
		m["mkdir"] = uint32(o.DirMode)
	}
	return m
}

func postProcess(cfg *Config) error {
	if cfg.Indent < 0 {
		return errors.Newf(errors.ErrConfigInvalid, "indent must not be negative, got %d", cfg.Indent)
	}
	if cfg.Delay < 0 {
		return errors.Newf(errors.ErrConfigInvalid, "delay must not be negative, got %s", cfg.Delay)
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = filesystem.DefaultDirMode
	}
	if cfg.DirMode&^fs.ModePerm != 0 {
		return errors.Newf(errors.ErrConfigInvalid, "mkdir mode %o has bits outside the permission range", uint32(cfg.DirMode))
	}

	if cfg.Path != "" {
		abs, err := filepath.Abs(paths.ExpandHome(cfg.Path))
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "failed to get absolute path for %s", cfg.Path)
		}
		cfg.Path = abs
		if cfg.Name == "" {
			cfg.Name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		}
		return nil
	}

	if cfg.Name == "" {
		return errors.New(errors.ErrConfigInvalid, "a store name is required when no path is given")
	}
	if cfg.Home == "" {
		cfg.Home = paths.ConfigHome()
	}
	cfg.Home = paths.ExpandHome(cfg.Home)
	cfg.Path = paths.StoreFile(cfg.Home, cfg.Base, cfg.Name)
	return nil
}

// String summarises the configuration for logs.
func (c *Config) String() string {
	return fmt.Sprintf("path=%s indent=%d delay=%s mkdir=%o", c.Path, c.Indent, c.Delay, uint32(c.DirMode))
}
