// Package config loads service settings from an optional YAML file and
// AGENDACYCLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/agendacycle/internal/graph"
	"github.com/alexanderramin/agendacycle/internal/guard"
	"github.com/alexanderramin/agendacycle/internal/service"
	"gopkg.in/yaml.v3"
)

const envPrefix = "AGENDACYCLE_"

// DefaultPartition is the named graph agendas live in.
const DefaultPartition = "http://mu.semte.ch/graphs/organizations/kanselarij"

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Graph     GraphConfig     `yaml:"graph"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Guard     GuardConfig     `yaml:"guard"`
	HTTP      HTTPConfig      `yaml:"http"`
	NATS      NATSConfig      `yaml:"nats"`
	Log       LogConfig       `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type GraphConfig struct {
	Partition string `yaml:"partition"`
	// ReadRetries bounds retries of a failed read. Writes are never retried.
	ReadRetries       int           `yaml:"read_retries"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay"`
}

type LifecycleConfig struct {
	BatchSize int `yaml:"batch_size"`
	// SettleDelay is applied between cascade phases and before an action
	// responds, giving the external cache time to catch up.
	SettleDelay time.Duration `yaml:"settle_delay"`
}

type GuardConfig struct {
	Scope        string        `yaml:"scope"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxWait      time.Duration `yaml:"max_wait"`
}

type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// NATSConfig enables delta publication when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is text, json or auto (text on a terminal, json otherwise).
	Format string `yaml:"format"`
}

// DefaultDBPath is ~/.agendacycle/agendacycle.db, or a relative path when
// the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".agendacycle", "agendacycle.db")
	}
	return filepath.Join(home, ".agendacycle", "agendacycle.db")
}

// DefaultConfig returns a Config with sensible defaults.
// Delta publication is disabled by default.
func DefaultConfig() Config {
	retry := graph.DefaultRetryConfig()
	g := guard.DefaultConfig()
	return Config{
		Database: DatabaseConfig{Path: DefaultDBPath()},
		Graph: GraphConfig{
			Partition:         DefaultPartition,
			ReadRetries:       int(retry.MaxRetries),
			RetryInitialDelay: retry.InitialInterval,
			RetryMaxDelay:     retry.MaxInterval,
		},
		Lifecycle: LifecycleConfig{BatchSize: service.DefaultBatchSize},
		Guard: GuardConfig{
			Scope:        string(g.Scope),
			PollInterval: g.PollInterval,
			MaxWait:      g.MaxWait,
		},
		HTTP: HTTPConfig{Addr: ":8080", RequestTimeout: 5 * time.Minute},
		NATS: NATSConfig{Subject: graph.DefaultDeltaSubject},
		Log:  LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads defaults, then the YAML file at path when path is non-empty,
// then environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = Merge(cfg, fromFile)
	}
	ApplyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromFile decodes a YAML file. Fields the file omits stay zero.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of override applied.
func Merge(base, override Config) Config {
	out := base
	setString(&out.Database.Path, override.Database.Path)
	setString(&out.Graph.Partition, override.Graph.Partition)
	setInt(&out.Graph.ReadRetries, override.Graph.ReadRetries)
	setDuration(&out.Graph.RetryInitialDelay, override.Graph.RetryInitialDelay)
	setDuration(&out.Graph.RetryMaxDelay, override.Graph.RetryMaxDelay)
	setInt(&out.Lifecycle.BatchSize, override.Lifecycle.BatchSize)
	setDuration(&out.Lifecycle.SettleDelay, override.Lifecycle.SettleDelay)
	setString(&out.Guard.Scope, override.Guard.Scope)
	setDuration(&out.Guard.PollInterval, override.Guard.PollInterval)
	setDuration(&out.Guard.MaxWait, override.Guard.MaxWait)
	setString(&out.HTTP.Addr, override.HTTP.Addr)
	setDuration(&out.HTTP.RequestTimeout, override.HTTP.RequestTimeout)
	setString(&out.NATS.URL, override.NATS.URL)
	setString(&out.NATS.Subject, override.NATS.Subject)
	setString(&out.Log.Level, override.Log.Level)
	setString(&out.Log.Format, override.Log.Format)
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

// ApplyEnv overrides cfg from AGENDACYCLE_* variables. Unparseable values
// are ignored.
func ApplyEnv(cfg *Config) {
	envString("DB", &cfg.Database.Path)
	envString("GRAPH", &cfg.Graph.Partition)
	envInt("READ_RETRIES", &cfg.Graph.ReadRetries, 0)
	envDuration("RETRY_INITIAL_DELAY", &cfg.Graph.RetryInitialDelay)
	envDuration("RETRY_MAX_DELAY", &cfg.Graph.RetryMaxDelay)
	envInt("BATCH_SIZE", &cfg.Lifecycle.BatchSize, 1)
	envDuration("SETTLE_DELAY", &cfg.Lifecycle.SettleDelay)
	envString("GUARD_SCOPE", &cfg.Guard.Scope)
	envDuration("GUARD_POLL_INTERVAL", &cfg.Guard.PollInterval)
	envDuration("GUARD_MAX_WAIT", &cfg.Guard.MaxWait)
	envString("HTTP_ADDR", &cfg.HTTP.Addr)
	envDuration("REQUEST_TIMEOUT", &cfg.HTTP.RequestTimeout)
	envString("NATS_URL", &cfg.NATS.URL)
	envString("NATS_SUBJECT", &cfg.NATS.Subject)
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FORMAT", &cfg.Log.Format)
}

func envString(name string, dst *string) {
	if v := os.Getenv(envPrefix + name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int, minimum int) {
	v := os.Getenv(envPrefix + name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= minimum {
		*dst = n
	}
}

// envDuration accepts Go durations ("250ms") or plain milliseconds.
func envDuration(name string, dst *time.Duration) {
	v := os.Getenv(envPrefix + name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		*dst = time.Duration(n) * time.Millisecond
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Graph.Partition == "" {
		errs = append(errs, errors.New("graph.partition is required"))
	}
	if c.Graph.ReadRetries < 0 {
		errs = append(errs, errors.New("graph.read_retries must not be negative"))
	}
	if c.Lifecycle.BatchSize <= 0 {
		errs = append(errs, errors.New("lifecycle.batch_size must be positive"))
	}
	if c.Lifecycle.SettleDelay < 0 {
		errs = append(errs, errors.New("lifecycle.settle_delay must not be negative"))
	}
	switch guard.Scope(c.Guard.Scope) {
	case guard.ScopeMeeting, guard.ScopeGlobal:
	default:
		errs = append(errs, fmt.Errorf("guard.scope %q must be meeting or global", c.Guard.Scope))
	}
	if c.Guard.PollInterval <= 0 {
		errs = append(errs, errors.New("guard.poll_interval must be positive"))
	}
	if c.Guard.MaxWait < 0 {
		errs = append(errs, errors.New("guard.max_wait must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be auto, text or json", c.Log.Format))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Service is the lifecycle controller's view of the config.
func (c Config) Service() service.Config {
	return service.Config{
		GraphPartition: c.Graph.Partition,
		BatchSize:      c.Lifecycle.BatchSize,
		SettleDelay:    c.Lifecycle.SettleDelay,
	}
}

func (c Config) GuardConfig() guard.Config {
	return guard.Config{
		Scope:        guard.Scope(c.Guard.Scope),
		PollInterval: c.Guard.PollInterval,
		MaxWait:      c.Guard.MaxWait,
	}
}

func (c Config) Retry() graph.RetryConfig {
	return graph.RetryConfig{
		MaxRetries:      uint64(c.Graph.ReadRetries),
		InitialInterval: c.Graph.RetryInitialDelay,
		MaxInterval:     c.Graph.RetryMaxDelay,
	}
}
