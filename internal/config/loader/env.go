package loader

import (
	"os"
	"strings"
)

// EnvPrefix is the prefix of environment variables read by EnvLoader.
const EnvPrefix = "WORDEVENTS_"

// EnvLoader loads configuration from environment variables.
//
// Mapped variables are placed at their configured path. Any other variable
// with the prefix is placed by splitting its name: WORDEVENTS_LOGGING_FILE
// becomes logging.file. Values are kept as strings.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "WORDEVENTS_")
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "WORDEVENTS_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		environ: os.Environ,
	}
}

func defaultEnvMapping() map[string]string {
	return map[string]string{
		"WORDEVENTS_DIGIT_INTERVAL": "engine.digit_interval",
		"WORDEVENTS_EVENT_TYPE":     "engine.event_type",
		"WORDEVENTS_ACCEPT":         "engine.accept",
		"WORDEVENTS_LOG_LEVEL":      "logging.level",
		"WORDEVENTS_LOG_FORMAT":     "logging.format",
		"WORDEVENTS_LOG_FILE":       "logging.file",
		"WORDEVENTS_SCRIPT":         "script.path",
	}
}

// Ignored lists prefixed variables that are not configuration settings.
var Ignored = map[string]bool{
	"WORDEVENTS_CONFIG": true,
}

// Load reads environment variables and returns a configuration map.
// Empty values are treated as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) || Ignored[name] {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(config, path, value)
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts WORDEVENTS_ENGINE_DIGIT_INTERVAL to engine.digit_interval.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, setting, ok := strings.Cut(name, "_")
	if !ok || section == "" || setting == "" {
		return name
	}
	return section + "." + setting
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}
