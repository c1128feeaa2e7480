package config

// Config is the root configuration for Arena.
type Config struct {
	Provider ProviderConfig `yaml:"provider,omitempty"`
	Agent    AgentConfig    `yaml:"agent,omitempty"`
	Tools    ToolsConfig    `yaml:"tools,omitempty"`
	Scholar  ScholarConfig  `yaml:"scholar,omitempty"`
	Gateway  GatewayConfig  `yaml:"gateway,omitempty"`
	Session  SessionConfig  `yaml:"session,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Prompts  PromptsConfig  `yaml:"prompts,omitempty"`
}

// ProviderConfig selects and configures the LLM provider.
type ProviderConfig struct {
	Name       string   `yaml:"name,omitempty"`       // "gemini" (default) | "mock"
	APIKey     string   `yaml:"apiKey,omitempty"`     // supports ${ENV_VAR} expansion
	Model      string   `yaml:"model,omitempty"`      // primary model ID
	ImageModel string   `yaml:"imageModel,omitempty"` // model used for infographic generation
	Endpoint   string   `yaml:"endpoint,omitempty"`   // API base URL override
	Fallbacks  []string `yaml:"fallbacks,omitempty"`  // model refs tried after the primary
}

// AgentConfig controls the agentic loop.
type AgentConfig struct {
	MaxIterations int      `yaml:"maxIterations,omitempty"` // tool round-trip cap
	MaxArgChars   int      `yaml:"maxArgChars,omitempty"`   // per-string-argument ceiling
	MaxTokens     int      `yaml:"maxTokens,omitempty"`
	Temperature   *float64 `yaml:"temperature,omitempty"`
	ExtraPrompt   string   `yaml:"extraPrompt,omitempty"`
}

// ToolsConfig tunes individual tools.
type ToolsConfig struct {
	Disabled            []string `yaml:"disabled,omitempty"`            // tool names left unregistered
	MaxSearchResults    int      `yaml:"maxSearchResults,omitempty"`    // papers returned by search_papers
	PDFMaxChars         int      `yaml:"pdfMaxChars,omitempty"`         // extracted text ceiling
	InfographicDir      string   `yaml:"infographicDir,omitempty"`      // output directory for generated images
	InfographicFallback *bool    `yaml:"infographicFallback,omitempty"` // degrade to structured summary when image generation is unavailable; default true
}

// ScholarConfig configures the literature API clients.
type ScholarConfig struct {
	RateLimit          float64 `yaml:"rateLimit,omitempty"` // requests per second across clients
	UserAgent          string  `yaml:"userAgent,omitempty"`
	Mailto             string  `yaml:"mailto,omitempty"` // CrossRef politeness contact
	SemanticScholarKey string  `yaml:"semanticScholarKey,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port int         `yaml:"port,omitempty"`
	Bind string      `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	Host string      `yaml:"host,omitempty"` // used when bind is "custom"
	Auth GatewayAuth `yaml:"auth,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Mode  string `yaml:"mode,omitempty"` // "token" | "none"
	Token string `yaml:"token,omitempty"`
}

// SessionConfig defines conversation session behavior.
type SessionConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "memory"
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleLevel string `yaml:"consoleLevel,omitempty"` // console may be quieter than the buffer
	BufferSize   int    `yaml:"bufferSize,omitempty"`   // log sink ring-buffer capacity
}

// PromptsConfig controls prompt-file loading.
type PromptsConfig struct {
	Dir string `yaml:"dir,omitempty"` // override for the prompts directory
}
