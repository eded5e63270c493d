// Package config holds the explicit configuration value built once by the
// command-line entry point and handed to every component.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Recognized suffixes
const (
	FileSuffix = "csfile" // Single compressed file
	DirSuffix  = "csdir"  // Packed directory tree
)

// DefaultCodec is the byte compressor used for single files.
const DefaultCodec = "lz4"

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "QSTORE"

// Viper keys
const (
	KeyForce    = "force"
	KeyVerbose  = "verbose"
	KeyBundle   = "bundle"
	KeyList     = "list"
	KeyProgress = "progress"
	KeyCodec    = "codec"
)

// ErrNoInputs is returned by Validate when no input path is given.
var ErrNoInputs = errors.New("no input paths")

// Suffixes is the pair of filename extensions used to classify inputs.
type Suffixes struct {
	File string
	Dir  string
}

// DefaultSuffixes returns the built-in suffix pair.
func DefaultSuffixes() Suffixes {
	return Suffixes{File: FileSuffix, Dir: DirSuffix}
}

// Config is the whole invocation state.
type Config struct {
	Inputs   []string
	Force    bool
	Verbose  bool
	Bundle   bool
	List     bool
	Progress bool
	Codec    string
	Suffixes Suffixes
}

// Default returns a Config with every optional field at its default.
func Default() Config {
	return Config{
		Codec:    DefaultCodec,
		Suffixes: DefaultSuffixes(),
	}
}

// Load builds a Config from v and the positional input paths. Inputs
// starting with "~" are expanded to the user's home directory.
func Load(v *viper.Viper, inputs []string) (Config, error) {
	cfg := Default()
	cfg.Force = v.GetBool(KeyForce)
	cfg.Verbose = v.GetBool(KeyVerbose)
	cfg.Bundle = v.GetBool(KeyBundle)
	cfg.List = v.GetBool(KeyList)
	cfg.Progress = v.GetBool(KeyProgress)
	if c := v.GetString(KeyCodec); c != "" {
		cfg.Codec = strings.ToLower(c)
	}

	cfg.Inputs = make([]string, 0, len(inputs))
	for _, in := range inputs {
		p, err := homedir.Expand(in)
		if err != nil {
			return Config{}, fmt.Errorf("expand %s: %w", in, err)
		}
		cfg.Inputs = append(cfg.Inputs, p)
	}

	return cfg, cfg.Validate()
}

// NewViper returns a viper instance reading QSTORE_* environment variables
// and, if path is not empty, the given config file.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyCodec, DefaultCodec)

	if path != "" {
		p, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
	}
	return v, nil
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInputs
	}
	if c.Suffixes.File == "" || c.Suffixes.Dir == "" {
		return errors.New("empty recognized suffix")
	}
	if c.Suffixes.File == c.Suffixes.Dir {
		return fmt.Errorf("file and tree suffix are both %q", c.Suffixes.File)
	}
	return nil
}
