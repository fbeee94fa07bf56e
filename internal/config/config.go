// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Supported session backends.
const (
	DriverWebDriver = "webdriver"
	DriverCDP       = "cdp"
)

// Supported browsers for the WebDriver backend.
const (
	BrowserFirefox = "firefox"
	BrowserChrome  = "chrome"
)

// DefaultTargetURL is the page the check suite was written against.
const DefaultTargetURL = "https://abdulme.link/whoami"

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	WebDriver WebDriverConfig `mapstructure:"webdriver" yaml:"webdriver"`
	Target    TargetConfig    `mapstructure:"target" yaml:"target"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts" yaml:"timeouts"`
	Report    ReportConfig    `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig describes the browser the session is launched with.
type BrowserConfig struct {
	// Driver selects the session backend: "webdriver" or "cdp".
	Driver string `mapstructure:"driver" yaml:"driver"`
	// Name selects the browser for the WebDriver backend. The CDP backend is always Chrome.
	Name        string   `mapstructure:"name" yaml:"name"`
	Headless    bool     `mapstructure:"headless" yaml:"headless"`
	AllowCamera bool     `mapstructure:"allow_camera" yaml:"allow_camera"`
	Binary      string   `mapstructure:"binary" yaml:"binary"`
	Args        []string `mapstructure:"args" yaml:"args"`
}

// WebDriverConfig locates the WebDriver endpoint.
type WebDriverConfig struct {
	// RemoteURL is used when no local driver service is started.
	RemoteURL string `mapstructure:"remote_url" yaml:"remote_url"`
	// DriverPath, when set, starts geckodriver or chromedriver locally on Port.
	DriverPath string `mapstructure:"driver_path" yaml:"driver_path"`
	Port       int    `mapstructure:"port" yaml:"port"`
	Debug      bool   `mapstructure:"debug" yaml:"debug"`
}

// TargetConfig is the page under test and the inputs the checks feed it.
type TargetConfig struct {
	URL        string `mapstructure:"url" yaml:"url"`
	UploadFile string `mapstructure:"upload_file" yaml:"upload_file"`
}

// TimeoutsConfig bounds every blocking wait.
type TimeoutsConfig struct {
	Element      time.Duration `mapstructure:"element" yaml:"element"`
	Results      time.Duration `mapstructure:"results" yaml:"results"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Shutdown     time.Duration `mapstructure:"shutdown" yaml:"shutdown"`
}

// ReportConfig controls failure artifacts.
type ReportConfig struct {
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "camcheck")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.driver", DriverWebDriver)
	v.SetDefault("browser.name", BrowserFirefox)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.allow_camera", true)

	// -- WebDriver --
	v.SetDefault("webdriver.remote_url", "http://localhost:4444")
	v.SetDefault("webdriver.port", 4444)
	v.SetDefault("webdriver.debug", false)

	// -- Target --
	v.SetDefault("target.url", DefaultTargetURL)
	// target.upload_file has no default; it is host specific.

	// -- Timeouts --
	v.SetDefault("timeouts.element", "10s")
	v.SetDefault("timeouts.results", "120s")
	v.SetDefault("timeouts.poll_interval", "500ms")
	v.SetDefault("timeouts.shutdown", "15s")
}

// EnvPrefix is the prefix of every environment override, e.g. CAMCHECK_TARGET_URL.
const EnvPrefix = "CAMCHECK"

// BindEnvironment wires CAMCHECK_* environment variables into v.
func BindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, and these have no default.
	_ = v.BindEnv("target.upload_file")
	_ = v.BindEnv("report.screenshot_dir")
	_ = v.BindEnv("webdriver.driver_path")
	_ = v.BindEnv("browser.binary")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Normalize lower-cases enum-like fields and expands "~" in filesystem paths.
func (c *Config) Normalize() error {
	c.Browser.Driver = strings.ToLower(strings.TrimSpace(c.Browser.Driver))
	c.Browser.Name = strings.ToLower(strings.TrimSpace(c.Browser.Name))

	paths := []*string{
		&c.Target.UploadFile,
		&c.Report.ScreenshotDir,
		&c.WebDriver.DriverPath,
		&c.Browser.Binary,
		&c.Logger.LogFile,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Browser.Driver {
	case DriverWebDriver:
		if c.Browser.Name != BrowserFirefox && c.Browser.Name != BrowserChrome {
			errs = append(errs, fmt.Errorf("browser.name must be %q or %q, got %q", BrowserFirefox, BrowserChrome, c.Browser.Name))
		}
		if c.WebDriver.DriverPath == "" && c.WebDriver.RemoteURL == "" {
			errs = append(errs, errors.New("webdriver.remote_url is required when webdriver.driver_path is not set"))
		}
		if c.WebDriver.DriverPath != "" && (c.WebDriver.Port <= 0 || c.WebDriver.Port > 65535) {
			errs = append(errs, fmt.Errorf("webdriver.port must be a valid TCP port, got %d", c.WebDriver.Port))
		}
	case DriverCDP:
	default:
		errs = append(errs, fmt.Errorf("browser.driver must be %q or %q, got %q", DriverWebDriver, DriverCDP, c.Browser.Driver))
	}

	if err := c.Target.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Timeouts.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks the target settings. The upload file is not required here; the
// upload check reports a missing value on its own so the other checks still run.
func (t *TargetConfig) Validate() error {
	if t.URL == "" {
		return errors.New("target.url is required")
	}
	u, err := url.Parse(t.URL)
	if err != nil {
		return fmt.Errorf("target.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		return fmt.Errorf("target.url must use http, https or file scheme, got %q", u.Scheme)
	}
	return nil
}

// Validate checks the TimeoutsConfig settings.
func (t *TimeoutsConfig) Validate() error {
	if t.Element <= 0 {
		return errors.New("timeouts.element must be a positive duration")
	}
	if t.Results <= 0 {
		return errors.New("timeouts.results must be a positive duration")
	}
	if t.PollInterval <= 0 {
		return errors.New("timeouts.poll_interval must be a positive duration")
	}
	if t.Shutdown <= 0 {
		return errors.New("timeouts.shutdown must be a positive duration")
	}
	return nil
}
