package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-ini/ini"
)

const (
	// DefaultPath is read from the working directory when SQLHELPER_CONFIG is unset.
	DefaultPath = "config.ini"

	SectionDatabase  = "database"
	SectionLogging   = "logging"
	SectionExport    = "export"
	SectionTelemetry = "telemetry"
)

// ErrMissingKey is wrapped by ConfigurationError when a required key is absent.
var ErrMissingKey = errors.New("required key is missing")

// requiredDatabaseKeys must all be present in the [database] section.
var requiredDatabaseKeys = []string{"drivername", "host", "database", "driver", "trusted_connection"}

// knownDatabaseKeys are mapped onto DatabaseConfig fields. Everything else in
// [database] is passed to the driver as an extra option.
var knownDatabaseKeys = map[string]bool{
	"drivername":         true,
	"host":               true,
	"port":               true,
	"database":           true,
	"username":           true,
	"password":           true,
	"driver":             true,
	"trusted_connection": true,
	"max_open_conns":     true,
	"max_idle_conns":     true,
	"conn_max_idle_time": true,
	"conn_max_lifetime":  true,
	"enable_telemetry":   true,
}

// Config is the parsed content of config.ini.
type Config struct {
	Path      string
	Database  DatabaseConfig
	Logging   LoggingConfig
	Export    ExportConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds the [database] section.
type DatabaseConfig struct {
	DriverName        string
	Host              string
	Port              string
	Database          string
	Username          string
	Password          string
	Driver            string
	TrustedConnection string

	// Options holds any extra key of the section, verbatim.
	Options map[string]string

	Pool PoolConfig
}

// PoolConfig tunes the connection pool behind the engine. Zero values mean
// "use the library default".
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	EnableTelemetry bool
}

// LoggingConfig holds the optional [logging] section.
type LoggingConfig struct {
	Level       string
	Format      string
	Environment string
}

// ExportConfig holds the optional [export] section used to upload result frames.
type ExportConfig struct {
	Type      string
	Bucket    string
	Endpoint  string
	Region    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// TelemetryConfig holds the optional [telemetry] section. Nothing is exported
// unless EnableTraces or EnableMetrics is set.
type TelemetryConfig struct {
	EnableTraces  bool
	EnableMetrics bool
	ServiceName   string
	Environment   string
	// Exporter is console, otlp (gRPC) or otlp-http.
	Exporter      string
	Endpoint      string
	Insecure      bool
	SamplingRatio float64
}

// envOverrides are applied on top of the file. Only non-empty values win.
type envOverrides struct {
	Path     string `env:"SQLHELPER_CONFIG"`
	Host     string `env:"SQLHELPER_DB_HOST"`
	Database string `env:"SQLHELPER_DB_DATABASE"`
	Username string `env:"SQLHELPER_DB_USERNAME"`
	Password string `env:"SQLHELPER_DB_PASSWORD"`
	LogLevel string `env:"SQLHELPER_LOG_LEVEL"`
}

func loadOverrides() (envOverrides, error) {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return o, fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return o, nil
}

// LoadDefault loads the file named by SQLHELPER_CONFIG, or config.ini in the
// working directory.
func LoadDefault() (*Config, error) {
	o, err := loadOverrides()
	if err != nil {
		return nil, newError(DefaultPath, "", "", err)
	}
	path := DefaultPath
	if o.Path != "" {
		path = o.Path
	}
	return Load(path)
}

// Load reads and validates the INI file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, newError(path, "", "", err)
	}

	file, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, newError(path, "", "", err)
	}

	cfg := &Config{Path: path}

	sec, err := section(file, SectionDatabase)
	if err != nil {
		return nil, newError(path, SectionDatabase, "", err)
	}
	if cfg.Database, err = parseDatabase(path, sec); err != nil {
		return nil, err
	}

	if sec, err := section(file, SectionLogging); err == nil {
		cfg.Logging = LoggingConfig{
			Level:       sec.Key("level").String(),
			Format:      sec.Key("format").String(),
			Environment: sec.Key("environment").String(),
		}
	}

	if sec, err := section(file, SectionExport); err == nil {
		cfg.Export = ExportConfig{
			Type:      strings.ToLower(sec.Key("type").String()),
			Bucket:    sec.Key("bucket").String(),
			Endpoint:  sec.Key("endpoint").String(),
			Region:    sec.Key("region").String(),
			Prefix:    sec.Key("prefix").String(),
			AccessKey: sec.Key("access_key").String(),
			SecretKey: sec.Key("secret_key").String(),
			UseSSL:    sec.Key("use_ssl").MustBool(false),
		}
	}

	if sec, err := section(file, SectionTelemetry); err == nil {
		if cfg.Telemetry, err = parseTelemetry(path, sec); err != nil {
			return nil, err
		}
	}

	o, err := loadOverrides()
	if err != nil {
		return nil, newError(path, "", "", err)
	}
	cfg.apply(o)

	return cfg, nil
}

// loadOptions reads values verbatim: '#' and ';' inside a value and
// surrounding quotes are kept, key names are case-insensitive.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
	InsensitiveKeys:         true,
}

// section returns the named section with every [DEFAULT] key it does not
// define itself filled in.
func section(file *ini.File, name string) (*ini.Section, error) {
	sec, err := file.GetSection(name)
	if err != nil {
		return nil, err
	}
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		if sec.HasKey(key.Name()) {
			continue
		}
		if _, err := sec.NewKey(key.Name(), key.Value()); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func parseDatabase(path string, sec *ini.Section) (DatabaseConfig, error) {
	for _, key := range requiredDatabaseKeys {
		if !sec.HasKey(key) {
			return DatabaseConfig{}, newError(path, SectionDatabase, key, ErrMissingKey)
		}
	}

	db := DatabaseConfig{
		DriverName:        sec.Key("drivername").String(),
		Host:              sec.Key("host").String(),
		Port:              sec.Key("port").String(),
		Database:          sec.Key("database").String(),
		Username:          sec.Key("username").String(),
		Password:          sec.Key("password").String(),
		Driver:            sec.Key("driver").String(),
		TrustedConnection: sec.Key("trusted_connection").String(),
		Options:           map[string]string{},
	}

	var err error
	if db.Pool.MaxOpenConns, err = intKey(sec, "max_open_conns"); err != nil {
		return DatabaseConfig{}, newError(path, SectionDatabase, "max_open_conns", err)
	}
	if db.Pool.MaxIdleConns, err = intKey(sec, "max_idle_conns"); err != nil {
		return DatabaseConfig{}, newError(path, SectionDatabase, "max_idle_conns", err)
	}
	if db.Pool.ConnMaxIdleTime, err = durationKey(sec, "conn_max_idle_time"); err != nil {
		return DatabaseConfig{}, newError(path, SectionDatabase, "conn_max_idle_time", err)
	}
	if db.Pool.ConnMaxLifetime, err = durationKey(sec, "conn_max_lifetime"); err != nil {
		return DatabaseConfig{}, newError(path, SectionDatabase, "conn_max_lifetime", err)
	}
	db.Pool.EnableTelemetry = sec.Key("enable_telemetry").MustBool(false)

	for _, key := range sec.Keys() {
		if knownDatabaseKeys[key.Name()] {
			continue
		}
		db.Options[key.Name()] = key.String()
	}

	return db, nil
}

func parseTelemetry(path string, sec *ini.Section) (TelemetryConfig, error) {
	t := TelemetryConfig{
		EnableTraces:  sec.Key("enable_traces").MustBool(false),
		EnableMetrics: sec.Key("enable_metrics").MustBool(false),
		ServiceName:   sec.Key("service_name").MustString("sqlhelper"),
		Environment:   sec.Key("environment").String(),
		Exporter:      strings.ToLower(sec.Key("exporter").MustString("console")),
		Endpoint:      sec.Key("endpoint").String(),
		Insecure:      sec.Key("insecure").MustBool(false),
		SamplingRatio: 1,
	}
	if sec.HasKey("sampling_ratio") {
		ratio, err := sec.Key("sampling_ratio").Float64()
		if err != nil {
			return TelemetryConfig{}, newError(path, SectionTelemetry, "sampling_ratio", err)
		}
		t.SamplingRatio = ratio
	}
	return t, nil
}

func intKey(sec *ini.Section, name string) (int, error) {
	if !sec.HasKey(name) {
		return 0, nil
	}
	return sec.Key(name).Int()
}

func durationKey(sec *ini.Section, name string) (time.Duration, error) {
	if !sec.HasKey(name) {
		return 0, nil
	}
	return sec.Key(name).Duration()
}

func (c *Config) apply(o envOverrides) {
	if o.Host != "" {
		c.Database.Host = o.Host
	}
	if o.Database != "" {
		c.Database.Database = o.Database
	}
	if o.Username != "" {
		c.Database.Username = o.Username
	}
	if o.Password != "" {
		c.Database.Password = o.Password
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}
