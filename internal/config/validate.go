package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Provider validation
	validProviders := []string{"gemini", "mock"}
	if cfg.Provider.Name != "" && !slices.Contains(validProviders, cfg.Provider.Name) {
		issues = append(issues, ValidationIssue{
			Path:    "provider.name",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Provider.Name),
		})
	}
	if cfg.Provider.Name == "gemini" && cfg.Provider.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "provider.apiKey",
			Message: "required for the gemini provider (or set GEMINI_API_KEY)",
		})
	}

	// Agent validation
	if cfg.Agent.MaxIterations < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.maxIterations",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Agent.MaxIterations),
		})
	}
	if cfg.Agent.MaxArgChars < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.maxArgChars",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Agent.MaxArgChars),
		})
	}
	if cfg.Agent.Temperature != nil && (*cfg.Agent.Temperature < 0 || *cfg.Agent.Temperature > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "agent.temperature",
			Message: fmt.Sprintf("must be 0-2, got %g", *cfg.Agent.Temperature),
		})
	}

	// Tools validation
	if cfg.Tools.MaxSearchResults < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "tools.maxSearchResults",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Tools.MaxSearchResults),
		})
	}
	if cfg.Tools.PDFMaxChars < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "tools.pdfMaxChars",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Tools.PDFMaxChars),
		})
	}

	// Scholar validation
	if cfg.Scholar.RateLimit <= 0 {
		issues = append(issues, ValidationIssue{
			Path:    "scholar.rateLimit",
			Message: fmt.Sprintf("must be positive, got %g", cfg.Scholar.RateLimit),
		})
	}

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}

	validAuthModes := []string{"token", "none"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.auth.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode),
		})
	}

	// Session validation
	validStores := []string{"sqlite", "memory"}
	if cfg.Session.Store != "" && !slices.Contains(validStores, cfg.Session.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "session.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Session.Store),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	if cfg.Logging.ConsoleLevel != "" && !slices.Contains(validLogLevels, cfg.Logging.ConsoleLevel) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleLevel",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.ConsoleLevel),
		})
	}
	if cfg.Logging.BufferSize < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "logging.bufferSize",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Logging.BufferSize),
		})
	}

	return issues
}
