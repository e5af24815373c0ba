package contentfulsource

import (
	env "github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/workstory/contentful-source/normalize"
)

// LoggingConfig controls the optional go-logger provider wired through
// gologger.NewProvider.
type LoggingConfig struct {
	Level     string `env:"CONTENTFUL_SOURCE_LOG_LEVEL" envDefault:"info"`
	Format    string `env:"CONTENTFUL_SOURCE_LOG_FORMAT" envDefault:"json"`
	AddSource bool   `env:"CONTENTFUL_SOURCE_LOG_ADD_SOURCE"`
}

// Config captures the normalization knobs of the pipeline. Credentials and
// space selection belong to the sync client and are deliberately absent.
type Config struct {
	// IDMode picks the type-label segment used in synthesized ids. Both
	// historical shapes exist in persisted deployments, so this stays an
	// explicit choice.
	IDMode normalize.IDMode `env:"CONTENTFUL_SOURCE_ID_MODE" envDefault:"name"`

	// ConflictPrefix renames content type fields that would shadow a
	// reserved node field.
	ConflictPrefix string `env:"CONTENTFUL_SOURCE_CONFLICT_PREFIX" envDefault:"contentful"`

	Logging LoggingConfig
}

// DefaultConfig returns the configuration used when the host supplies no
// overrides.
func DefaultConfig() Config {
	return Config{
		IDMode:         normalize.IDModeName,
		ConflictPrefix: normalize.DefaultConflictPrefix,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ConfigFromEnv builds a configuration from the process environment,
// starting from the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration before the pipeline accepts it.
func (c Config) Validate() error {
	errs := validation.Errors{}
	if !c.IDMode.Valid() {
		errs["id_mode"] = validation.NewError("contentful.config.id_mode_invalid", "id mode must be \"name\" or \"id\"")
	}
	if c.ConflictPrefix == "" {
		errs["conflict_prefix"] = validation.NewError("contentful.config.conflict_prefix_required", "conflict prefix is required")
	}
	for _, reserved := range normalize.RestrictedNodeFields {
		if c.ConflictPrefix == reserved {
			errs["conflict_prefix"] = validation.NewError("contentful.config.conflict_prefix_reserved", "conflict prefix must not be a reserved node field")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
