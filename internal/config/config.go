package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/megandevlan/ADF/internal/domain"
)

// Configuration keys, following the ADF config file layout.
const (
	KeyCompareObs       = "diag_basic_info.compare_obs"
	KeyCreateHTML       = "diag_basic_info.create_html"
	KeyOutputDir        = "diag_basic_info.cam_diag_plot_loc"
	KeyCaseName         = "diag_cam_climo.cam_case_name"
	KeyCaseTSDir        = "diag_cam_climo.cam_ts_loc"
	KeyBaselineName     = "diag_cam_baseline_climo.cam_case_name"
	KeyBaselineTSDir    = "diag_cam_baseline_climo.cam_ts_loc"
	KeyVarList          = "diag_var_list"
	KeyDomain           = "amwg_table.domain"
	KeyPlotAnnualSeries = "amwg_table.plot_annual_series"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
	KeyMetricsTextfile  = "metrics.textfile"
	KeyServeAddr        = "serve.addr"
	KeyShutdownTimeout  = "serve.shutdown_timeout"
	KeyKafkaBrokers     = "kafka.brokers"
	KeyKafkaTopic       = "kafka.topic"
)

// EnvPrefix prefixes environment overrides, e.g. AMWG_LOGGING_LEVEL.
const EnvPrefix = "AMWG"

// Lookup is the key-value view of the diagnostics configuration.
// *viper.Viper satisfies it.
type Lookup interface {
	GetString(key string) string
	GetBool(key string) bool
	GetStringSlice(key string) []string
	GetDuration(key string) time.Duration
	IsSet(key string) bool
}

// Case is one simulation whose time series are tabulated.
type Case struct {
	Name          string
	TimeSeriesDir string
}

// Config holds all settings for one table run.
type Config struct {
	Cases      []Case
	OutputDir  string
	CreateHTML bool
	Variables  []string

	Domain           string
	PlotAnnualSeries bool

	LogLevel  string
	LogFormat string

	MetricsTextfile string
	ServeAddr       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the YAML configuration at path, applying AMWG_* environment
// overrides and defaults. An empty path searches ./config.yaml and
// ./configs/config.yaml.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromLookup(v)
}

// New returns a viper instance with defaults and environment overrides set,
// but no config file.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyCompareObs, false)
	v.SetDefault(KeyCreateHTML, false)
	v.SetDefault(KeyDomain, domain.GlobalDomain)
	v.SetDefault(KeyPlotAnnualSeries, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyMetricsTextfile, "")
	v.SetDefault(KeyServeAddr, "")
	v.SetDefault(KeyShutdownTimeout, "10s")
	v.SetDefault(KeyKafkaBrokers, []string{})
	v.SetDefault(KeyKafkaTopic, "amwg-table-rows")
}

// FromLookup builds and validates a Config from key-value settings.
func FromLookup(l Lookup) (*Config, error) {
	caseName, err := required(l, KeyCaseName)
	if err != nil {
		return nil, err
	}
	caseDir, err := required(l, KeyCaseTSDir)
	if err != nil {
		return nil, err
	}
	outputDir, err := required(l, KeyOutputDir)
	if err != nil {
		return nil, err
	}

	cases := []Case{{Name: caseName, TimeSeriesDir: caseDir}}
	if !l.GetBool(KeyCompareObs) {
		baseName, err := required(l, KeyBaselineName)
		if err != nil {
			return nil, err
		}
		baseDir, err := required(l, KeyBaselineTSDir)
		if err != nil {
			return nil, err
		}
		cases = append(cases, Case{Name: baseName, TimeSeriesDir: baseDir})
	}

	vars := nonEmpty(l.GetStringSlice(KeyVarList))
	if len(vars) == 0 {
		return nil, fmt.Errorf("%s is required", KeyVarList)
	}

	dom := l.GetString(KeyDomain)
	if _, ok := domain.DomainByName(dom); !ok {
		return nil, fmt.Errorf("%s: unknown domain %q", KeyDomain, dom)
	}
	if dom != domain.GlobalDomain {
		return nil, fmt.Errorf("%s: regional domain %q is not supported, only %q", KeyDomain, dom, domain.GlobalDomain)
	}

	shutdownTimeout := l.GetDuration(KeyShutdownTimeout)
	if shutdownTimeout <= 0 {
		return nil, fmt.Errorf("%s must be a positive duration", KeyShutdownTimeout)
	}

	logFormat := l.GetString(KeyLogFormat)
	if logFormat != "json" && logFormat != "text" {
		return nil, fmt.Errorf("%s must be json or text, got %q", KeyLogFormat, logFormat)
	}

	cfg := &Config{
		Cases:            cases,
		OutputDir:        outputDir,
		CreateHTML:       l.GetBool(KeyCreateHTML),
		Variables:        vars,
		Domain:           dom,
		PlotAnnualSeries: l.GetBool(KeyPlotAnnualSeries),
		LogLevel:         l.GetString(KeyLogLevel),
		LogFormat:        logFormat,
		MetricsTextfile:  l.GetString(KeyMetricsTextfile),
		ServeAddr:        l.GetString(KeyServeAddr),
		ShutdownTimeout:  shutdownTimeout,
		KafkaBrokers:     nonEmpty(l.GetStringSlice(KeyKafkaBrokers)),
		KafkaTopic:       l.GetString(KeyKafkaTopic),
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, fmt.Errorf("%s is required when %s is set", KeyKafkaTopic, KeyKafkaBrokers)
	}

	return cfg, nil
}

// KafkaEnabled reports whether rows are also published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func required(l Lookup, key string) (string, error) {
	s := strings.TrimSpace(l.GetString(key))
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
