package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Provider: ProviderConfig{
			Name:       "gemini",
			Model:      "gemini-2.0-flash-exp",
			ImageModel: "gemini-2.0-flash-exp",
		},
		Agent: AgentConfig{
			MaxIterations: 10,
			MaxArgChars:   50000,
		},
		Tools: ToolsConfig{
			MaxSearchResults: 5,
			PDFMaxChars:      10000,
		},
		Scholar: ScholarConfig{
			RateLimit: 2.0,
			UserAgent: "arena/1.0",
		},
		Gateway: GatewayConfig{
			Port: 18789,
			Bind: "loopback",
			Auth: GatewayAuth{
				Mode: "token",
			},
		},
		Session: SessionConfig{
			Store: "sqlite",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleLevel: "info",
			BufferSize:   1000,
		},
	}
}

// InfographicFallbackEnabled reports whether infographic generation should
// degrade to a structured text summary when the image model is unavailable.
// Defaults to true when unset.
func (t ToolsConfig) InfographicFallbackEnabled() bool {
	if t.InfographicFallback == nil {
		return true
	}
	return *t.InfographicFallback
}
