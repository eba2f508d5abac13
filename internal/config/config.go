package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/decision"
	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	CavityMarker            string   `mapstructure:"cavity_marker" yaml:"cavity_marker"`
	ExcludedSheets          []string `mapstructure:"excluded_sheets" yaml:"excluded_sheets"`
	ExcludedSheetSubstrings []string `mapstructure:"excluded_sheet_substrings" yaml:"excluded_sheet_substrings"`
	BatchNameSeparator      string   `mapstructure:"batch_name_separator" yaml:"batch_name_separator"`
	// Numeric parsing locale; empty auto-detects per cell.
	DecimalSeparator string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	DefaultDecimals  int    `mapstructure:"default_decimals" yaml:"default_decimals"`
	HistogramBins    int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	Sensitivity      string `mapstructure:"sensitivity" yaml:"sensitivity"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	QueueSize int    `mapstructure:"queue_size" yaml:"queue_size"`
}

const (
	envPrefix = "QIPSPC"
	dirName   = ".qipspc"
)

var defaults = map[string]any{
	"cavity_marker":             "穴",
	"excluded_sheets":           []string{"摘要", "Summary", "統計", "Statistics", "說明", "Notes", "零件名稱", "PartNumber"},
	"excluded_sheet_substrings": []string{"分析", "配置", "analysis", "configuration"},
	"batch_name_separator":      "",
	"decimal_separator":         "",
	"default_decimals":          4,
	"histogram_bins":            15,
	"sensitivity":               string(decision.SensitivityStandard),
	"log_level":                 "warn",
	"output_dir":                ".",
	"queue_size":                16,
}

// Keys lists the configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.qipspc/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the engine cannot use.
func (c *Global) Validate() error {
	if c.DefaultDecimals < 0 || c.DefaultDecimals > 10 {
		return fmt.Errorf("default_decimals must be 0..10, got %d", c.DefaultDecimals)
	}
	if c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if _, err := decision.ParseSensitivity(c.Sensitivity); err != nil {
		return err
	}
	switch c.DecimalSeparator {
	case "", ".", ",":
	default:
		return fmt.Errorf("decimal_separator must be '.', ',' or empty, got %q", c.DecimalSeparator)
	}
	return nil
}

// Set assigns key from its string form and validates the result. List
// keys take comma-separated values.
func (c *Global) Set(key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}
	next := *c
	switch key {
	case "cavity_marker":
		next.CavityMarker = value
	case "excluded_sheets":
		next.ExcludedSheets = splitList(value)
	case "excluded_sheet_substrings":
		next.ExcludedSheetSubstrings = splitList(value)
	case "batch_name_separator":
		next.BatchNameSeparator = value
	case "decimal_separator":
		next.DecimalSeparator = strings.TrimSpace(value)
	case "default_decimals":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.DefaultDecimals = n
	case "histogram_bins":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.HistogramBins = n
	case "queue_size":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.QueueSize = n
	case "sensitivity":
		next.Sensitivity = strings.ToLower(strings.TrimSpace(value))
	case "log_level":
		next.LogLevel = strings.ToLower(strings.TrimSpace(value))
	case "output_dir":
		next.OutputDir = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get returns the string form of key, as accepted by Set.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "cavity_marker":
		return c.CavityMarker, nil
	case "excluded_sheets":
		return strings.Join(c.ExcludedSheets, ","), nil
	case "excluded_sheet_substrings":
		return strings.Join(c.ExcludedSheetSubstrings, ","), nil
	case "batch_name_separator":
		return c.BatchNameSeparator, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "default_decimals":
		return strconv.Itoa(c.DefaultDecimals), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "queue_size":
		return strconv.Itoa(c.QueueSize), nil
	case "sensitivity":
		return c.Sensitivity, nil
	case "log_level":
		return c.LogLevel, nil
	case "output_dir":
		return c.OutputDir, nil
	}
	return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WorkbookOptions converts the parsing settings.
func (c *Global) WorkbookOptions() workbook.Options {
	opt := workbook.DefaultOptions()
	opt.CavityMarker = c.CavityMarker
	opt.ExcludedNames = append([]string(nil), c.ExcludedSheets...)
	opt.ExcludedSubstrings = append([]string(nil), c.ExcludedSheetSubstrings...)
	opt.BatchNameSeparator = c.BatchNameSeparator
	opt.DefaultDecimals = c.DefaultDecimals
	if c.DecimalSeparator != "" {
		opt.DecimalSeparator = []rune(c.DecimalSeparator)[0]
	}
	return opt
}

// EngineOptions converts the analysis settings.
func (c *Global) EngineOptions() spc.Options {
	opt := spc.DefaultOptions()
	opt.HistogramBins = c.HistogramBins
	opt.DefaultDecimals = c.DefaultDecimals
	return opt
}
