package square

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option keys accepted by CompressionConfig.Update.
const (
	OptionStripMetadata = "strip_metadata"
	OptionOptimize      = "optimize"
	OptionJPEGQuality   = "jpeg_quality"
	OptionQuantize      = "quantize"
)

const (
	MinQuality = 1
	MaxQuality = 100
	MinColors  = 2
	MaxColors  = 256

	DefaultQuality = 85
	DefaultColors  = 256
)

type Toggle struct {
	Enabled bool `yaml:"enabled"`
}

type QualityOption struct {
	Enabled bool `yaml:"enabled"`
	Value   int  `yaml:"value"`
}

type QuantizeOption struct {
	Enabled bool `yaml:"enabled"`
	Colors  int  `yaml:"colors"`
}

// CompressionConfig holds the master compression switch and its sub-options.
// A sub-option only takes effect when both Enabled and its own flag are set.
type CompressionConfig struct {
	Enabled       bool           `yaml:"enabled"`
	StripMetadata Toggle         `yaml:"strip_metadata"`
	Optimize      Toggle         `yaml:"optimize"`
	JPEGQuality   QualityOption  `yaml:"jpeg_quality"`
	Quantize      QuantizeOption `yaml:"quantize"`
}

func DefaultCompression() CompressionConfig {
	return CompressionConfig{
		JPEGQuality: QualityOption{Value: DefaultQuality},
		Quantize:    QuantizeOption{Colors: DefaultColors},
	}
}

// Active reports whether option is switched on and the master switch is on.
func (c CompressionConfig) Active(option string) bool {
	if !c.Enabled {
		return false
	}
	switch option {
	case OptionStripMetadata:
		return c.StripMetadata.Enabled
	case OptionOptimize:
		return c.Optimize.Enabled
	case OptionJPEGQuality:
		return c.JPEGQuality.Enabled
	case OptionQuantize:
		return c.Quantize.Enabled
	default:
		return false
	}
}

// Update applies a single setting change. An empty option addresses the
// master switch. Numeric values are clamped to their valid range.
func (c *CompressionConfig) Update(option, field, value string) error {
	value = strings.TrimSpace(value)

	if option == "" {
		if field != "enabled" {
			return fmt.Errorf("unknown setting %q", field)
		}
		return setBool(&c.Enabled, option, field, value)
	}

	switch option + "." + field {
	case OptionStripMetadata + ".enabled":
		return setBool(&c.StripMetadata.Enabled, option, field, value)
	case OptionOptimize + ".enabled":
		return setBool(&c.Optimize.Enabled, option, field, value)
	case OptionJPEGQuality + ".enabled":
		return setBool(&c.JPEGQuality.Enabled, option, field, value)
	case OptionJPEGQuality + ".value":
		return setInt(&c.JPEGQuality.Value, MinQuality, MaxQuality, option, field, value)
	case OptionQuantize + ".enabled":
		return setBool(&c.Quantize.Enabled, option, field, value)
	case OptionQuantize + ".colors":
		return setInt(&c.Quantize.Colors, MinColors, MaxColors, option, field, value)
	default:
		return fmt.Errorf("unknown setting %q", option+"."+field)
	}
}

// ParseSetting splits "option.field=value" (or "enabled=value" for the
// master switch) into its parts.
func ParseSetting(s string) (option, field, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", "", fmt.Errorf("setting %q: expected key=value", s)
	}
	key = strings.TrimSpace(key)
	if before, after, found := strings.Cut(key, "."); found {
		return before, after, value, nil
	}
	return "", key, value, nil
}

// Normalize clamps numeric parameters into range. Fields a sparse preset
// leaves out keep their defaults because presets decode over
// DefaultCompression.
func (c *CompressionConfig) Normalize() {
	c.JPEGQuality.Value = clamp(c.JPEGQuality.Value, MinQuality, MaxQuality)
	c.Quantize.Colors = clamp(c.Quantize.Colors, MinColors, MaxColors)
}

// LoadPreset reads a YAML compression preset on top of the defaults.
func LoadPreset(path string) (CompressionConfig, error) {
	cfg := DefaultCompression()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse preset %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Describe renders the settings as the lines announced at the start of a run.
func (c CompressionConfig) Describe() []string {
	if !c.Enabled {
		return []string{"Compression options are disabled."}
	}

	lines := []string{"Compression options are ENABLED."}
	if c.StripMetadata.Enabled {
		lines = append(lines, "  - Applying: Strip Metadata")
	}
	if c.Optimize.Enabled {
		lines = append(lines, "  - Applying: Optimize")
	}
	if c.JPEGQuality.Enabled {
		lines = append(lines, fmt.Sprintf("  - Applying: Jpeg Quality (value=%d)", c.JPEGQuality.Value))
	}
	if c.Quantize.Enabled {
		lines = append(lines, fmt.Sprintf("  - Applying: Quantize (colors=%d)", c.Quantize.Colors))
	}
	return lines
}

func setBool(dst *bool, option, field, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("setting %s: %q is not a boolean", settingName(option, field), value)
	}
	*dst = v
	return nil
}

func setInt(dst *int, lo, hi int, option, field, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("setting %s: %q is not an integer", settingName(option, field), value)
	}
	*dst = clamp(v, lo, hi)
	return nil
}

func settingName(option, field string) string {
	if option == "" {
		return field
	}
	return option + "." + field
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
