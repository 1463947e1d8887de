// Package config loads the deployment configuration of a cadence station.
//
// Precedence, lowest first: built-in defaults, the YAML file, CADENCE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/aretw0/cadence/pkg/trigger"
	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CADENCE_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full station configuration.
type Config struct {
	LogLevel  string `yaml:"log_level" mapstructure:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format" env:"LOG_FORMAT"`

	Session SessionConfig `yaml:"session" mapstructure:"session" envPrefix:"SESSION_"`
	Trigger TriggerConfig `yaml:"trigger" mapstructure:"trigger" envPrefix:"TRIGGER_"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store" envPrefix:"STORE_"`
	HTTP    HTTPConfig    `yaml:"http" mapstructure:"http" envPrefix:"HTTP_"`
}

// SessionConfig holds the phase timing and cycle shape.
type SessionConfig struct {
	FixationMin time.Duration `yaml:"fixation_min" mapstructure:"fixation_min" env:"FIXATION_MIN"`
	FixationMax time.Duration `yaml:"fixation_max" mapstructure:"fixation_max" env:"FIXATION_MAX"`
	Instruction time.Duration `yaml:"instruction" mapstructure:"instruction" env:"INSTRUCTION"`
	Execute     time.Duration `yaml:"execute" mapstructure:"execute" env:"EXECUTE"`
	Grace       time.Duration `yaml:"grace" mapstructure:"grace" env:"GRACE"`
	Loading     time.Duration `yaml:"loading" mapstructure:"loading" env:"LOADING"`

	Cycle       string `yaml:"cycle" mapstructure:"cycle" env:"CYCLE"`
	TaskStartAt string `yaml:"task_start_at" mapstructure:"task_start_at" env:"TASK_START_AT"`
}

// TriggerConfig holds the endpoint and codebook of the recording apparatus.
type TriggerConfig struct {
	Host        string        `yaml:"host" mapstructure:"host" env:"HOST"`
	Port        int           `yaml:"port" mapstructure:"port" env:"PORT"`
	QueueSize   int           `yaml:"queue_size" mapstructure:"queue_size" env:"QUEUE_SIZE"`
	SendTimeout time.Duration `yaml:"send_timeout" mapstructure:"send_timeout" env:"SEND_TIMEOUT"`

	Codes      map[string]string `yaml:"codes" mapstructure:"codes" env:"CODES"`
	TrialCodes map[string]string `yaml:"trial_codes" mapstructure:"trial_codes" env:"TRIAL_CODES"`
	Fallback   string            `yaml:"fallback" mapstructure:"fallback" env:"FALLBACK"`
}

// StoreConfig selects where session parameters live.
type StoreConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend" env:"BACKEND"`
	Path    string `yaml:"path" mapstructure:"path" env:"PATH"`

	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string        `yaml:"redis_prefix" mapstructure:"redis_prefix" env:"REDIS_PREFIX"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl" env:"TTL"`
}

// HTTPConfig configures `cadence serve`.
type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr" env:"ADDR"`
}

// Default returns the reference deployment configuration.
func Default() Config {
	timing := session.DefaultTiming()
	book := trigger.DefaultCodebook()

	codes := make(map[string]string, len(book.Kinds))
	for k, v := range book.Kinds {
		codes[string(k)] = v
	}

	return Config{
		LogLevel:  "info",
		LogFormat: string(logging.FormatText),
		Session: SessionConfig{
			FixationMin: timing.FixationMin,
			FixationMax: timing.FixationMax,
			Instruction: timing.Instruction,
			Execute:     timing.Execute,
			Grace:       timing.Grace,
			Loading:     5 * time.Second,
			Cycle:       string(session.ThreePhase),
			TaskStartAt: string(session.BoundaryExecute),
		},
		Trigger: TriggerConfig{
			Host:        "172.16.191.129",
			Port:        50000,
			QueueSize:   trigger.DefaultQueueSize,
			SendTimeout: trigger.DefaultSendTimeout,
			Codes:       codes,
			TrialCodes:  book.Trials,
			Fallback:    string(book.Fallback),
		},
		Store: StoreConfig{
			Backend:     StoreFile,
			Path:        ".cadence/params.json",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "cadence:params:",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment. A missing file at path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := Decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays YAML document raw onto cfg. Durations accept Go syntax
// ("4100ms", "2s") or a bare number of milliseconds.
func Decode(raw []byte, cfg *Config) error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	if doc == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondsHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// millisecondsHook reads plain integers and numeric strings as milliseconds.
func millisecondsHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
	}
	return data, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	switch logging.Format(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log_format: unknown format %q", c.LogFormat))
	}

	switch session.Cycle(c.Session.Cycle) {
	case session.ThreePhase, session.TwoPhase:
	default:
		errs = append(errs, fmt.Errorf("session.cycle: unknown cycle %q", c.Session.Cycle))
	}
	switch session.Boundary(c.Session.TaskStartAt) {
	case session.BoundaryExecute, session.BoundaryInstruction:
	default:
		errs = append(errs, fmt.Errorf("session.task_start_at: unknown boundary %q", c.Session.TaskStartAt))
	}
	for name, d := range map[string]time.Duration{
		"fixation_min": c.Session.FixationMin,
		"fixation_max": c.Session.FixationMax,
		"instruction":  c.Session.Instruction,
		"execute":      c.Session.Execute,
		"grace":        c.Session.Grace,
		"loading":      c.Session.Loading,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("session.%s: negative duration %s", name, d))
		}
	}

	if c.Trigger.Host == "" {
		errs = append(errs, errors.New("trigger.host: required"))
	}
	if c.Trigger.Port <= 0 || c.Trigger.Port > 65535 {
		errs = append(errs, fmt.Errorf("trigger.port: %d out of range", c.Trigger.Port))
	}
	if err := c.Codebook().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("trigger: %w", err))
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}

	return errors.Join(errs...)
}

// Logger builds the structured logger described by the configuration.
func (c Config) Logger(w io.Writer) *slog.Logger {
	return logging.NewWithWriter(w, logging.ParseLevel(c.LogLevel), logging.Format(c.LogFormat))
}

// Timing returns the session durations.
func (c Config) Timing() session.Timing {
	return session.Timing{
		FixationMin: c.Session.FixationMin,
		FixationMax: c.Session.FixationMax,
		Instruction: c.Session.Instruction,
		Execute:     c.Session.Execute,
		Grace:       c.Session.Grace,
	}.Normalize()
}

// SessionOptions returns the machine options implied by the configuration.
func (c Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithTiming(c.Timing()),
		session.WithCycle(session.Cycle(c.Session.Cycle)),
		session.WithTaskStartAt(session.Boundary(c.Session.TaskStartAt)),
	}
}

// Codebook returns the trigger encoding table.
func (c Config) Codebook() trigger.Codebook {
	kinds := make(map[domain.TriggerKind]string, len(c.Trigger.Codes))
	for k, v := range c.Trigger.Codes {
		kinds[domain.TriggerKind(k)] = v
	}
	trials := make(map[string]string, len(c.Trigger.TrialCodes))
	for k, v := range c.Trigger.TrialCodes {
		trials[k] = v
	}
	return trigger.Codebook{
		Kinds:    kinds,
		Trials:   trials,
		Fallback: trigger.FallbackPolicy(c.Trigger.Fallback),
	}
}
