// Package config reads function configuration from the environment and,
// optionally, from SSM Parameter Store.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"translation-history/internal/integrations/paramstore"
)

const (
	defaultTableName   = "TranslationHistory"
	defaultEnvironment = "development"
	defaultLogLevel    = "info"

	// EnvironmentProduction is the ENVIRONMENT value that locks down test-only
	// behaviour.
	EnvironmentProduction = "production"

	paramVerboseErrors       = "/config/verbose_errors"
	paramAllowUserIDOverride = "/config/allow_user_id_override"
)

// Config holds the settings shared by every function.
type Config struct {
	TableName   string
	Environment string
	LogLevel    string
	ParamPrefix string

	// AllowUserIDOverride lets callers name their own identity through a
	// user_id field. Test environments only.
	AllowUserIDOverride bool
	// VerboseErrors adds upstream error text to 5xx response bodies.
	VerboseErrors bool
	WarmupEnabled bool
	// FunctionName is set by the Lambda runtime and is the target of warmup
	// self-invocations. Empty outside Lambda.
	FunctionName string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	return Config{
		TableName:           getEnv("TABLE_NAME", defaultTableName),
		Environment:         strings.ToLower(getEnv("ENVIRONMENT", defaultEnvironment)),
		LogLevel:            getEnv("LOG_LEVEL", defaultLogLevel),
		ParamPrefix:         strings.TrimRight(strings.TrimSpace(os.Getenv("PARAM_PREFIX")), "/"),
		AllowUserIDOverride: getEnvBool("ALLOW_USER_ID_OVERRIDE", false),
		VerboseErrors:       getEnvBool("VERBOSE_ERRORS", false),
		WarmupEnabled:       getEnvBool("WARMUP_ENABLED", true),
		FunctionName:        strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")),
	}
}

// Load reads the environment, applies SSM overrides when PARAM_PREFIX is set,
// and validates the result.
func Load(ctx context.Context, params paramstore.Getter) (Config, error) {
	cfg := FromEnv()
	if cfg.ParamPrefix != "" {
		if params == nil {
			return Config{}, errors.New("config: PARAM_PREFIX set but no parameter store available")
		}
		if err := cfg.ApplyParams(ctx, params); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyParams overrides the feature flags with SSM values under ParamPrefix.
// A parameter that does not exist leaves the current value in place.
func (c *Config) ApplyParams(ctx context.Context, params paramstore.Getter) error {
	verbose, err := boolParam(ctx, params, c.ParamPrefix+paramVerboseErrors, c.VerboseErrors)
	if err != nil {
		return err
	}
	override, err := boolParam(ctx, params, c.ParamPrefix+paramAllowUserIDOverride, c.AllowUserIDOverride)
	if err != nil {
		return err
	}
	c.VerboseErrors = verbose
	c.AllowUserIDOverride = override
	return nil
}

// Validate rejects configurations that must never run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TableName) == "" {
		return errors.New("config: table name must not be empty")
	}
	if c.Environment == EnvironmentProduction && c.AllowUserIDOverride {
		return errors.New("config: user_id override must not be enabled in production")
	}
	return nil
}

func boolParam(ctx context.Context, params paramstore.Getter, name string, def bool) (bool, error) {
	raw, err := params.GetParameter(ctx, name)
	if err != nil {
		if errors.Is(err, paramstore.ErrNotFound) {
			return def, nil
		}
		return false, fmt.Errorf("config: load %s: %w", name, err)
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("config: parse %s: %w", name, err)
	}
	return v, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
