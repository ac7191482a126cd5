// Package config provides configuration management for the line-edge tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/line-edge/internal/league"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("league", validateLeague)
	v.RegisterValidation("datetime", validateDateTime)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateLeague accepts the league codes the engine ships policies for
func validateLeague(fl validator.FieldLevel) bool {
	code := strings.ToUpper(fl.Field().String())
	for _, known := range league.Codes() {
		if code == known {
			return true
		}
	}
	return false
}

// validateDateTime validates datetime strings
func validateDateTime(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	startDate, err := time.Parse(dateLayout, cfg.Backtest.StartDate)
	if err != nil {
		return fmt.Errorf("invalid backtest start_date format: %w", err)
	}
	endDate, err := time.Parse(dateLayout, cfg.Backtest.EndDate)
	if err != nil {
		return fmt.Errorf("invalid backtest end_date format: %w", err)
	}
	if endDate.Before(startDate) {
		return fmt.Errorf("backtest start_date must not be after end_date")
	}

	v := cfg.Validation
	if v.ThresholdMin >= v.ThresholdMax {
		return fmt.Errorf("validation threshold_min must be below threshold_max")
	}
	if v.ThresholdStep > v.ThresholdMax-v.ThresholdMin {
		return fmt.Errorf("validation threshold_step cannot exceed the threshold range")
	}
	if v.MinSamples < 30 && cfg.IsProduction() {
		return fmt.Errorf("production environment requires min_samples of at least 30")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		return fmt.Errorf("metrics port is required when metrics are enabled")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "league":
			errMsg += fmt.Sprintf("- Field '%s' has unknown league '%v' (known: %s)\n", field, value, strings.Join(league.Codes(), ", "))
		case "datetime":
			errMsg += fmt.Sprintf("- Field '%s' must be a YYYY-MM-DD date, got '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
