package cli

import (
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

	"github.com/sartorproj/covidframe/frame"
	"github.com/sartorproj/covidframe/source"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: COVIDFRAME_FETCH__CACHE_DIR sets fetch.cache_dir.
const EnvPrefix = "COVIDFRAME_"

// Output modes.
const (
	OutputTable = "table"
	OutputCSV   = "csv"
	OutputJSON  = "json"
)

var configFiles = []string{"covidframe.yaml", "covidframe.yml"}

// Config is the resolved CLI configuration.
type Config struct {
	Source   string `koanf:"source"`
	Format   string `koanf:"format"`
	DataType string `koanf:"data_type"`
	Region   string `koanf:"region"`
	Counties bool   `koanf:"counties"`
	Update   bool   `koanf:"update"`

	// Input is a local CSV read instead of fetching.
	Input string `koanf:"input"`
	// InputLayout is "long" or "wide".
	InputLayout string `koanf:"input_layout"`
	// InputMetric names the values of a wide input file.
	InputMetric string `koanf:"input_metric"`
	// InputKeys is a comma separated list of the region key columns of the
	// input file. Empty infers them from the column names.
	InputKeys string `koanf:"input_keys"`

	Output  string `koanf:"output"`
	Limit   int    `koanf:"limit"`
	Verbose bool   `koanf:"verbose"`

	Fetch source.Config `koanf:"fetch"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Request builds the provider request described by the config.
func (c *Config) Request() source.Request {
	return source.Request{
		Source:   c.Source,
		Format:   c.Format,
		DataType: c.DataType,
		Region:   c.Region,
		Counties: c.Counties,
		Update:   c.Update,
	}.Normalize()
}

// DefaultConfig returns the configuration used when nothing overrides
// the defaults.
func DefaultConfig() *Config {
	req := source.DefaultRequest()
	return &Config{
		Source:      req.Source,
		Format:      req.Format,
		DataType:    req.DataType,
		Region:      req.Region,
		Update:      true,
		InputLayout: "long",
		InputMetric: "cases",
		Output:      OutputTable,
		Limit:       50,
		Fetch:       source.DefaultConfig(),
	}
}

func defaults() map[string]interface{} {
	req := source.DefaultRequest()
	fetch := source.DefaultConfig()
	return map[string]interface{}{
		"source":                    req.Source,
		"format":                    req.Format,
		"data_type":                 req.DataType,
		"region":                    req.Region,
		"counties":                  false,
		"update":                    true,
		"input_layout":              "long",
		"input_metric":              "cases",
		"input_keys":                "",
		"output":                    OutputTable,
		"limit":                     50,
		"verbose":                   false,
		"fetch.jhu_series_url":      fetch.JHUSeriesURL,
		"fetch.jhu_lookup_url":      fetch.JHULookupURL,
		"fetch.nyt_url":             fetch.NYTURL,
		"fetch.cache_dir":           fetch.CacheDir,
		"fetch.timeout":             fetch.Timeout.String(),
		"fetch.requests_per_second": fetch.RequestsPerSecond,
		"fetch.burst":               fetch.Burst,
	}
}

// flagKeys maps flags whose names differ from their config keys.
var flagKeys = map[string]string{
	"cache-dir": "fetch.cache_dir",
	"timeout":   "fetch.timeout",
}

// LoadConfig loads configuration from defaults, a YAML file, environment
// variables and flags, in increasing order of precedence. Only the
// persistent root flags take part; command flags stay local to their
// command.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Output = strings.ToLower(c.Output)
	switch c.Output {
	case OutputTable, OutputCSV, OutputJSON:
	default:
		return frame.ArgumentError("config", "output must be one of: table, csv, json (got %q)", c.Output)
	}
	c.InputLayout = strings.ToLower(c.InputLayout)
	if c.InputLayout != "long" && c.InputLayout != "wide" {
		return frame.ArgumentError("config", "input_layout must be long or wide (got %q)", c.InputLayout)
	}
	if c.Input == "" {
		return c.Request().Validate()
	}
	return nil
}

// findConfigFile returns the explicit path, or the first default config
// file in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
