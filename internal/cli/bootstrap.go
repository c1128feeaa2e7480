package cli

import (
	"fmt"
	"path/filepath"

	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/prompts"
	"github.com/soyeahso/arena/internal/scholar"
	"github.com/soyeahso/arena/internal/store"
	"github.com/soyeahso/arena/internal/tools"
)

// runtime bundles everything a command needs to drive the assistant.
type runtime struct {
	cfg      config.Config
	registry *llm.Registry
	sessions agent.SessionStore
	loop     *agent.Loop
	library  *store.Library
	db       *store.DB
}

// Close releases the runtime's resources.
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
}

// buildRuntime loads config and wires the provider registry, session
// store, tools, and agent loop. When persist is false the session store
// and library stay in memory regardless of config.
func buildRuntime(log *logging.Logger, persist bool) (*runtime, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	registry := llm.NewRegistryFromConfig(cfg.Provider, log)
	client, err := registry.Resolve(cfg.Provider.Model)
	if err != nil {
		return nil, fmt.Errorf("no LLM provider available (set provider.apiKey or GEMINI_API_KEY): %w", err)
	}

	rt := &runtime{cfg: cfg, registry: registry}

	if persist && cfg.Session.Store == "sqlite" {
		dbPath := filepath.Join(paths.Data, "arena.db")
		db, err := store.Open(dbPath, log)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		rt.db = db
		rt.sessions = store.NewSQLiteSessionStore(db)
		rt.library = store.NewLibrary(db)
		log.Info().Str("path", dbPath).Msg("using SQLite session store")
	} else {
		rt.sessions = agent.NewMemorySessionStore()
	}

	promptDir := cfg.Prompts.Dir
	if promptDir == "" {
		promptDir = paths.Prompts
	}
	infographicDir := cfg.Tools.InfographicDir
	if infographicDir == "" {
		infographicDir = paths.Infographics
	}

	limiter := scholar.NewLimiter(cfg.Scholar.RateLimit)
	deps := &tools.Deps{
		Client:         client,
		Prompts:        prompts.NewStore(promptDir),
		Arxiv:          scholar.NewArxivClient(limiter, cfg.Scholar.UserAgent),
		Scholar:        scholar.NewSemanticScholarClient(limiter, cfg.Scholar.UserAgent, cfg.Scholar.SemanticScholarKey),
		CrossRef:       scholar.NewCrossRefClient(limiter, cfg.Scholar.UserAgent, cfg.Scholar.Mailto),
		Config:         cfg.Tools,
		InfographicDir: infographicDir,
		Log:            log,
	}
	if rt.library != nil {
		deps.Library = rt.library
	}

	toolReg := agent.NewToolRegistry(log)
	if err := tools.Register(toolReg, deps, cfg.Tools.Disabled); err != nil {
		rt.Close()
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	rt.loop = agent.NewLoop(
		agent.LoopConfig{
			AgentName:     "Arena",
			Model:         cfg.Provider.Model,
			Fallbacks:     cfg.Provider.Fallbacks,
			MaxIterations: cfg.Agent.MaxIterations,
			MaxArgChars:   cfg.Agent.MaxArgChars,
			MaxTokens:     cfg.Agent.MaxTokens,
			Temperature:   cfg.Agent.Temperature,
			ExtraPrompt:   cfg.Agent.ExtraPrompt,
		},
		registry,
		rt.sessions,
		toolReg,
		log,
	)

	return rt, nil
}
