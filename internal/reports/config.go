package reports

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes report exports.
type Config struct {
	Title          string   `yaml:"title"`
	Formats        []string `yaml:"formats"`
	MaxExportRows  int      `yaml:"max_export_rows"`
	IncludeDevices bool     `yaml:"include_devices"`
}

// LoadConfig loads report configuration from the yaml file named by
// REFURB_REPORT_CONFIG, falling back to defaults when unset.
func LoadConfig() (Config, error) {
	cfg := Config{
		Title:          "Refurbishment Operations Summary",
		Formats:        []string{"csv", "xlsx", "pdf"},
		MaxExportRows:  10000,
		IncludeDevices: true,
	}

	if path := os.Getenv("REFURB_REPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.MaxExportRows <= 0 {
		cfg.MaxExportRows = 10000
	}
	if len(cfg.Formats) == 0 {
		cfg.Formats = []string{"csv"}
	}
	return cfg, nil
}

// FormatAllowed reports whether a requested export format is enabled.
func (c Config) FormatAllowed(format string) bool {
	for _, allowed := range c.Formats {
		if allowed == format {
			return true
		}
	}
	return false
}
