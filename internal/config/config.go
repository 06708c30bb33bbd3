package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/wordevents/internal/config/loader"
	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input"
	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/logging"
)

// Config is the complete wordevents configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
	Words   []WordConfig  `mapstructure:"words" validate:"dive"`
	Script  ScriptConfig  `mapstructure:"script"`

	// Path is the file the configuration was loaded from, if any.
	Path string `mapstructure:"-"`
}

// EngineConfig configures word segmentation.
type EngineConfig struct {
	// DigitInterval accepts a duration string ("500ms") or a number of
	// milliseconds.
	DigitInterval time.Duration `mapstructure:"digit_interval" validate:"gt=0,lte=1m"`
	EventType     string        `mapstructure:"event_type" validate:"oneof=keydown keypress keyup"`
	Accept        string        `mapstructure:"accept" validate:"oneof=alnum digits letters printable"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	Output string `mapstructure:"output" validate:"oneof=stderr stdout file"`
	File   string `mapstructure:"file" validate:"required_if=Output file"`
}

// WordConfig binds a word or a pattern to a built-in action.
type WordConfig struct {
	// Exactly one of Word and Pattern is set. Word may be empty to bind the
	// empty word. An empty Action prints.
	Word    *string `mapstructure:"word"`
	Pattern string  `mapstructure:"pattern"`
	Action  string  `mapstructure:"action" validate:"omitempty,oneof=print quit bell"`
	Message string  `mapstructure:"message"`
}

// ScriptConfig points at a Lua file registering word callbacks.
type ScriptConfig struct {
	Path string `mapstructure:"path" validate:"omitempty,file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			DigitInterval: input.DefaultDigitInterval,
			EventType:     key.KeyUp.String(),
			Accept:        "alnum",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: logging.OutputStderr,
		},
	}
}

// defaultMap is Default in map form, the lowest configuration layer.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"engine": map[string]any{
			"digit_interval": d.Engine.DigitInterval.String(),
			"event_type":     d.Engine.EventType,
			"accept":         d.Engine.Accept,
		},
		"logging": map[string]any{
			"level":  d.Logging.Level,
			"format": d.Logging.Format,
			"output": d.Logging.Output,
		},
	}
}

// Load reads the file at path (TOML or YAML), overlays WORDEVENTS_*
// environment variables and validates the result. An empty path or a
// missing file yields the defaults plus environment.
func Load(path string) (Config, error) {
	return LoadFS(loader.DefaultFS(), path, loader.NewEnvLoader(loader.EnvPrefix))
}

// LoadFS is Load with an explicit file system and environment loader.
// A nil env skips the environment layer.
func LoadFS(fsys loader.FileSystem, path string, env loader.Loader) (Config, error) {
	merged := defaultMap()

	if path != "" {
		l, err := loader.ForPath(fsys, path)
		if err != nil {
			return Config{}, err
		}
		file, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	if env != nil {
		vars, err := env.Load()
		if err != nil {
			return Config{}, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, vars)
	}

	cfg, err := FromMap(merged)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = path

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap decodes a configuration map. It does not validate.
func FromMap(m map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondsHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return Config{}, fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// millisecondsHook reads bare numbers as milliseconds for duration fields.
func millisecondsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	default:
		return data, nil
	}
}

// InputConfig converts the engine section to a handler configuration.
// Clock, Scheduler and Target are left for the caller.
func (c Config) InputConfig(logger *slog.Logger) (input.Config, error) {
	eventType, err := key.ParseEventType(c.Engine.EventType)
	if err != nil {
		return input.Config{}, err
	}
	accept, err := input.AcceptPreset(c.Engine.Accept)
	if err != nil {
		return input.Config{}, err
	}

	return input.Config{
		DigitInterval: c.Engine.DigitInterval,
		EventType:     eventType,
		Accept:        accept,
		Logger:        logger,
	}, nil
}

// LoggingConfig converts the logging section.
func (c Config) LoggingConfig() (logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.Config{}, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return logging.Config{}, err
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = c.Logging.Output
	cfg.FilePath = c.Logging.File
	return cfg, nil
}

// Matcher returns the dictionary matcher for the entry.
func (w WordConfig) Matcher() (dictionary.Matcher, error) {
	if w.Word != nil {
		return dictionary.Exact(*w.Word), nil
	}
	return dictionary.Pattern(w.Pattern)
}

// String names the entry the way dictionary matchers print.
func (w WordConfig) String() string {
	if w.Word != nil {
		return dictionary.Exact(*w.Word).String()
	}
	return "/" + w.Pattern + "/"
}
