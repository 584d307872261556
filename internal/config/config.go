package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// DefaultBoundariesSource is the public 50-state GeoJSON used when no
// boundary source is configured.
const DefaultBoundariesSource = "https://raw.githubusercontent.com/PublicaMundi/MappingAPI/master/data/geojson/us-states.json"

// ChartKind selects the popup chart style.
type ChartKind string

const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// Config holds all run settings, populated from an optional YAML file and
// environment variables.
type Config struct {
	BoundariesSource  string `yaml:"boundaries_source"`
	ConsumptionSource string `yaml:"consumption_source"`
	ProductionSource  string `yaml:"production_source"`
	DataYear          string `yaml:"data_year"`
	OutputDir         string `yaml:"output_dir"`

	IncludeSolar   bool      `yaml:"include_solar"`
	ColorPalette   string    `yaml:"color_palette"`
	PopupChartKind ChartKind `yaml:"popup_chart"`

	RenderStatic bool `yaml:"render_static"`
	RenderReport bool `yaml:"render_report"`
	ExportXLSX   bool `yaml:"export_xlsx"`

	// PDF report content.
	ReportAuthor string `yaml:"report_author"`
	ReportCourse string `yaml:"report_course"`
	HostedMapURL string `yaml:"hosted_map_url"`
	InsightsFile string `yaml:"insights_file"`

	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Optional Kafka profile sink; disabled when no brokers are set.
	KafkaBrokers      []string `yaml:"kafka_brokers"`
	KafkaProfileTopic string   `yaml:"kafka_profile_topic"`

	PushgatewayURL string `yaml:"pushgateway_url"`

	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		BoundariesSource:  DefaultBoundariesSource,
		ConsumptionSource: "energy_indicators.csv",
		ProductionSource:  "Energy_Production.csv",
		DataYear:          "2022",
		OutputDir:         "docs",
		IncludeSolar:      true,
		ColorPalette:      "colorblind",
		PopupChartKind:    ChartBar,
		RenderStatic:      true,
		RenderReport:      false,
		ExportXLSX:        true,
		FetchTimeout:      30 * time.Second,
		KafkaProfileTopic: "state-energy-profiles",
		HTTPAddr:          ":8080",
		ShutdownTimeout:   10 * time.Second,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE
// (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse CONFIG_FILE: %w", err)
		}
	}

	cfg.BoundariesSource = envOrDefault("BOUNDARIES_SOURCE", cfg.BoundariesSource)
	cfg.ConsumptionSource = envOrDefault("CONSUMPTION_SOURCE", cfg.ConsumptionSource)
	cfg.ProductionSource = envOrDefault("PRODUCTION_SOURCE", cfg.ProductionSource)
	cfg.DataYear = envOrDefault("DATA_YEAR", cfg.DataYear)
	cfg.OutputDir = envOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.ColorPalette = envOrDefault("COLOR_PALETTE", cfg.ColorPalette)
	cfg.PopupChartKind = ChartKind(strings.ToLower(envOrDefault("POPUP_CHART", string(cfg.PopupChartKind))))
	cfg.ReportAuthor = envOrDefault("REPORT_AUTHOR", cfg.ReportAuthor)
	cfg.ReportCourse = envOrDefault("REPORT_COURSE", cfg.ReportCourse)
	cfg.HostedMapURL = envOrDefault("HOSTED_MAP_URL", cfg.HostedMapURL)
	cfg.InsightsFile = envOrDefault("INSIGHTS_FILE", cfg.InsightsFile)
	cfg.KafkaProfileTopic = envOrDefault("KAFKA_PROFILE_TOPIC", cfg.KafkaProfileTopic)
	cfg.PushgatewayURL = envOrDefault("PUSHGATEWAY_URL", cfg.PushgatewayURL)
	cfg.HTTPAddr = envOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("LOG_FORMAT", cfg.LogFormat)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = parseList(v)
	}

	var err error
	if cfg.IncludeSolar, err = envBool("INCLUDE_SOLAR", cfg.IncludeSolar); err != nil {
		return nil, err
	}
	if cfg.RenderStatic, err = envBool("RENDER_STATIC", cfg.RenderStatic); err != nil {
		return nil, err
	}
	if cfg.RenderReport, err = envBool("RENDER_REPORT", cfg.RenderReport); err != nil {
		return nil, err
	}
	if cfg.ExportXLSX, err = envBool("EXPORT_XLSX", cfg.ExportXLSX); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BoundariesSource == "" {
		return errors.New("BOUNDARIES_SOURCE is required")
	}
	if c.ConsumptionSource == "" {
		return errors.New("CONSUMPTION_SOURCE is required")
	}
	if c.ProductionSource == "" {
		return errors.New("PRODUCTION_SOURCE is required")
	}
	if c.OutputDir == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	if _, err := strconv.Atoi(c.DataYear); err != nil {
		return fmt.Errorf("invalid DATA_YEAR %q", c.DataYear)
	}
	if _, err := domain.PaletteByName(c.ColorPalette); err != nil {
		return fmt.Errorf("invalid COLOR_PALETTE: %w", err)
	}
	if c.PopupChartKind != ChartBar && c.PopupChartKind != ChartPie {
		return fmt.Errorf("invalid POPUP_CHART %q: want bar or pie", c.PopupChartKind)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaProfileTopic == "" {
		return errors.New("KAFKA_PROFILE_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// KafkaEnabled reports whether profiles should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		if fallback <= 0 {
			return 0, fmt.Errorf("invalid %s: must be positive", key)
		}
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
