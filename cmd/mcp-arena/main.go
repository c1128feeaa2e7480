// mcp-arena exposes the Arena research tools over the Model Context
// Protocol: a JSON-RPC server on stdin/stdout, so MCP-capable clients
// can call search_papers, verify_sources, and the rest directly.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/config"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/prompts"
	"github.com/soyeahso/arena/internal/scholar"
	"github.com/soyeahso/arena/internal/tools"
	"github.com/soyeahso/arena/internal/version"
)

const (
	protocolVersion = "2024-11-05"
	callTimeout     = 5 * time.Minute
)

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type toolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type toolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type mcpServer struct {
	registry *agent.ToolRegistry
	log      *logging.Logger

	mu  sync.Mutex
	out io.Writer
}

func main() {
	// stdout carries the protocol, logs go to stderr
	log := logging.New(nil, envOr("ARENA_LOG_LEVEL", "warn"))

	registry, err := buildRegistry(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tools")
	}

	srv := &mcpServer{registry: registry, log: log.Sub("mcp"), out: os.Stdout}
	srv.run(os.Stdin)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildRegistry wires the tool registry the same way the CLI does, but
// without a session store or loop: MCP clients drive the tools directly.
func buildRegistry(log *logging.Logger) (*agent.ToolRegistry, error) {
	paths, err := config.ResolvePaths()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}

	clients := llm.NewRegistryFromConfig(cfg.Provider, log)
	client, err := clients.Resolve(cfg.Provider.Model)
	if err != nil {
		return nil, fmt.Errorf("no LLM provider available (set provider.apiKey or GEMINI_API_KEY): %w", err)
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

	registry := agent.NewToolRegistry(log)
	if err := tools.Register(registry, deps, cfg.Tools.Disabled); err != nil {
		return nil, err
	}
	return registry, nil
}

func (s *mcpServer) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	s.log.Info().Str("version", version.Version).Msg("listening on stdin")

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		s.handle(line)
	}

	if err := scanner.Err(); err != nil {
		s.log.Error().Err(err).Msg("stdin read failed")
	}
}

func (s *mcpServer) handle(line string) {
	var req jsonRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.sendError(nil, -32700, "Parse error", err.Error())
		return
	}

	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleListTools(req)
	case "tools/call":
		s.handleCallTool(req)
	case "notifications/initialized", "notifications/cancelled":
		// notifications carry no response
	case "ping":
		s.sendResult(req.ID, map[string]any{})
	default:
		s.sendError(req.ID, -32601, "Method not found", req.Method)
	}
}

func (s *mcpServer) handleInitialize(req jsonRPCRequest) {
	s.sendResult(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo": map[string]any{
			"name":    "arena",
			"version": version.Version,
		},
	})
}

func (s *mcpServer) handleListTools(req jsonRPCRequest) {
	names := s.registry.Names()
	infos := make([]toolInfo, 0, len(names))
	for _, name := range names {
		tool, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		infos = append(infos, toolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: json.RawMessage(tool.InputSchema()),
		})
	}
	s.sendResult(req.ID, map[string]any{"tools": infos})
}

func (s *mcpServer) handleCallTool(req jsonRPCRequest) {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	input := "{}"
	if params.Arguments != nil {
		data, err := json.Marshal(params.Arguments)
		if err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
		input = string(data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	s.log.Debug().Str("tool", params.Name).Msg("tool call")

	output, err := s.registry.Dispatch(ctx, llm.ToolCall{Name: params.Name, Input: input})
	if err != nil {
		// tool failures are results, not protocol errors
		s.sendResult(req.ID, toolResult{
			Content: []contentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
		return
	}

	s.sendResult(req.ID, toolResult{
		Content: []contentItem{{Type: "text", Text: output}},
	})
}

func (s *mcpServer) sendResult(id, result any) {
	s.write(jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *mcpServer) sendError(id any, code int, message string, data any) {
	s.write(jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{
		Code: code, Message: message, Data: data,
	}})
}

func (s *mcpServer) write(resp jsonRPCResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("marshaling response failed")
		return
	}
	fmt.Fprintln(s.out, string(data))
}
