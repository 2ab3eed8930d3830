package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFiles are tried, in order, when no config file is given.
var DefaultFiles = []string{"bridgerun.yaml", "bridgerun.yml"}

// sections are the nested config groups reachable from flat env and flag names.
var sections = []string{"extism", "osascript", "http"}

// flagKeys maps flags whose names do not follow the key layout.
var flagKeys = map[string]string{
	"wasm-file":         "extism.wasm_file",
	"entry-point":       "extism.entry_point",
	"osascript-command": "osascript.command",
	"http-token":        "http.token",
}

// FindConfigFile returns explicit, or the first of DefaultFiles present in the working
// directory, or "".
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load merges defaults, the config file, the environment and the changed flags in flags,
// then validates the result. cfgFile may be empty.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := FindConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// BRIDGERUN_MAX_DEPTH -> max_depth, BRIDGERUN_EXTISM_WASM_FILE -> extism.wasm_file
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(errors.New("invalid configuration"), err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	return nest(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)))
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return nest(strings.ReplaceAll(name, "-", "_"))
}

// nest turns a leading section name into a key path: http_timeout -> http.timeout.
func nest(key string) string {
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}
