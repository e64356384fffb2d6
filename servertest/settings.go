package servertest

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	apperrors "github.com/kbukum/testkit/errors"
	"github.com/kbukum/testkit/logger"
	"github.com/kbukum/testkit/server"
	"github.com/kbukum/testkit/validation"
)

// SettingsKey is the configuration section read into Settings.
const SettingsKey = "testkit"

// DefaultBaseURL is the origin relative request URIs are resolved against.
const DefaultBaseURL = "http://localhost"

// Settings configures the fixture itself. It is read from the "testkit"
// section of the merged configuration, e.g.
//
//	{"testkit": {"base_url": "http://api.test", "logging": {"level": "info"}}}
//
// or TESTKIT__BASE_URL in the environment.
type Settings struct {
	Environment string        `mapstructure:"environment"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Logging     logger.Config `mapstructure:"logging"`
	Server      server.Config `mapstructure:"server"`
}

// ApplyDefaults fills unset fields. environment is the name the
// configuration chain was loaded for.
func (s *Settings) ApplyDefaults(environment string) {
	if s.Environment == "" {
		s.Environment = environment
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	s.Server.ApplyDefaults()
}

// Validate checks the settings with struct tags.
func (s *Settings) Validate() error {
	return validation.Validate(s)
}

// loadSettings reads Settings from the merged configuration. The whole tree
// is unmarshalled so environment overrides of nested keys are visible.
func loadSettings(v *viper.Viper) (Settings, error) {
	var root struct {
		Testkit Settings `mapstructure:"testkit"`
	}
	if err := v.Unmarshal(&root); err != nil {
		return Settings{}, fmt.Errorf("decode %s settings: %w", SettingsKey, err)
	}

	settings := root.Testkit
	settings.ApplyDefaults(v.GetString("environment"))
	if err := settings.Validate(); err != nil {
		return Settings{}, apperrors.InvalidConfig(err).WithDetail("section", SettingsKey)
	}
	return settings, nil
}

// newLogger builds the fixture logger: a debug-level JSON sink writing to w,
// unless the settings configure logging explicitly.
func newLogger(s Settings, w io.Writer) *logger.Logger {
	name := s.Server.Name
	cfg := s.Logging
	if cfg.Level == "" && cfg.Format == "" && cfg.Output == "" {
		return logger.NewDebug(name, w)
	}

	if cfg.Level == "" {
		cfg.Level = "debug"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	switch {
	case w != nil:
		return logger.NewWithWriter(&cfg, w, name)
	case cfg.Output != "":
		return logger.New(&cfg, name)
	default:
		return logger.NewWithWriter(&cfg, io.Discard, name)
	}
}
