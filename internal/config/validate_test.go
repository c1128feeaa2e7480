package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Provider.APIKey = "test-key"
	return cfg
}

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, len(issues))
	for i, issue := range issues {
		paths[i] = issue.Path
	}
	return paths
}

func TestValidate_DefaultsWithKey(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := Defaults()
	issues := Validate(&cfg)
	assert.Contains(t, issuePaths(issues), "provider.apiKey")
}

func TestValidate_MockProviderNeedsNoKey(t *testing.T) {
	cfg := Defaults()
	cfg.Provider.Name = "mock"
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_BadProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Provider.Name = "openai"
	issues := Validate(&cfg)
	assert.Contains(t, issuePaths(issues), "provider.name")
}

func TestValidate_AgentBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Agent.MaxIterations = 0
	cfg.Agent.MaxArgChars = -1
	bad := 3.5
	cfg.Agent.Temperature = &bad

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "agent.maxIterations")
	assert.Contains(t, paths, "agent.maxArgChars")
	assert.Contains(t, paths, "agent.temperature")
}

func TestValidate_GatewayPort(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Port = 99999
	issues := Validate(&cfg)
	assert.Contains(t, issuePaths(issues), "gateway.port")
}

func TestValidate_BadBindAndAuth(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Bind = "public"
	cfg.Gateway.Auth.Mode = "password"

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "gateway.bind")
	assert.Contains(t, paths, "gateway.auth.mode")
}

func TestValidate_BadSessionStore(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Store = "redis"
	issues := Validate(&cfg)
	assert.Contains(t, issuePaths(issues), "session.store")
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	issues := Validate(&cfg)
	assert.Contains(t, issuePaths(issues), "logging.level")
}

func TestValidate_ScholarRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Scholar.RateLimit = 0
	issues := Validate(&cfg)
	assert.Contains(t, issuePaths(issues), "scholar.rateLimit")
}

func TestValidationIssue_String(t *testing.T) {
	issue := ValidationIssue{Path: "gateway.port", Message: "bad port"}
	assert.Equal(t, "gateway.port: bad port", issue.String())
}
