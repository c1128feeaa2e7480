package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/llm"
	"github.com/soyeahso/arena/internal/logging"
)

// Loop defaults, used when LoopConfig leaves them zero.
const (
	DefaultMaxIterations = 10
	DefaultMaxArgChars   = 50000
)

// truncationMarker is appended to any string argument cut at the
// ceiling so the tool can tell the value is incomplete.
const truncationMarker = "[Truncated due to length...]"

// State describes where the loop is in its lifecycle.
type State string

const (
	// StateAwaitingModel means a completion request is in flight.
	StateAwaitingModel State = "awaiting_model"
	// StateExecutingTools means the model asked for tools and they are running.
	StateExecutingTools State = "executing_tools"
	// StateDone means the model produced a final text answer.
	StateDone State = "done"
	// StateAborted means the loop stopped without a clean final answer:
	// either a malformed function call or the iteration cap.
	StateAborted State = "aborted"
)

// LoopConfig configures the agent loop.
type LoopConfig struct {
	AgentName     string
	Model         string
	Fallbacks     []string
	MaxIterations int
	MaxArgChars   int
	MaxTokens     int
	Temperature   *float64
	ExtraPrompt   string
}

// Result is the outcome of processing one user input.
type Result struct {
	Response   string        `json:"response"`
	State      State         `json:"state"`
	SessionID  string        `json:"sessionId"`
	Iterations int           `json:"iterations"`
	ToolCalls  int           `json:"toolCalls"`
	Model      string        `json:"model,omitempty"`
	Usage      llm.Usage     `json:"usage"`
	Duration   time.Duration `json:"duration"`
}

// Loop drives the conversation: it sends the history to the model,
// executes the tools it asks for, feeds the results back, and repeats
// until the model answers in text or a stop condition fires.
type Loop struct {
	cfg      LoopConfig
	client   *FailoverClient
	sessions SessionStore
	tools    *ToolRegistry
	log      *logging.Logger
}

// NewLoop creates an agent loop.
func NewLoop(
	cfg LoopConfig,
	registry *llm.Registry,
	sessions SessionStore,
	tools *ToolRegistry,
	log *logging.Logger,
) *Loop {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MaxArgChars <= 0 {
		cfg.MaxArgChars = DefaultMaxArgChars
	}
	return &Loop{
		cfg:      cfg,
		client:   NewFailoverClient(registry, cfg.Model, cfg.Fallbacks, log),
		sessions: sessions,
		tools:    tools,
		log:      log.Sub("agent"),
	}
}

// Run processes one user input and returns the final result. Run only
// returns a non-nil error for provider infrastructure failures; tool
// failures and malformed model output are handled inside the loop.
func (l *Loop) Run(ctx context.Context, key domain.SessionKey, input domain.Input) (*Result, error) {
	start := time.Now()

	session := l.sessions.GetOrCreate(key)

	l.log.Info().
		Str("sessionId", session.ID).
		Str("surface", key.Surface).
		Int("historyLen", len(session.Turns)).
		Msg("processing input")

	l.sessions.Append(session.ID, domain.Turn{
		Role:      domain.RoleUser,
		Content:   input.Text,
		Files:     input.Files,
		Timestamp: time.Now(),
	})

	system := BuildSystemPrompt(PromptConfig{
		AgentName:   l.cfg.AgentName,
		Model:       l.cfg.Model,
		ToolNames:   l.tools.Names(),
		ExtraPrompt: l.cfg.ExtraPrompt,
	})

	messages := l.sessions.History(session.ID)
	defs := l.tools.Definitions()

	state := StateAwaitingModel
	response := ""
	iterations := 0
	totalCalls := 0
	var usage llm.Usage
	model := l.cfg.Model

	// The model gets MaxIterations tool rounds plus one closing
	// completion. If that last response still asks for tools, the loop
	// aborts rather than running them.
	for round := 0; round <= l.cfg.MaxIterations; round++ {
		state = StateAwaitingModel

		resp, err := l.client.Complete(ctx, llm.CompletionRequest{
			Model:       l.cfg.Model,
			System:      system,
			Messages:    messages,
			Tools:       defs,
			MaxTokens:   l.cfg.MaxTokens,
			Temperature: l.cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM completion: %w", err)
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens
		if resp.Model != "" {
			model = resp.Model
		}

		if resp.StopReason == llm.FinishMalformed {
			state = StateAborted
			response = resp.Content
			if response == "" {
				response = "The model produced a malformed tool call and the conversation was stopped."
			}
			l.log.Warn().
				Str("sessionId", session.ID).
				Err(&MalformedResponseError{Partial: resp.Content}).
				Msg("aborting conversation")
			break
		}

		if len(resp.ToolCalls) == 0 {
			state = StateDone
			response = resp.Content
			break
		}

		if round == l.cfg.MaxIterations {
			state = StateAborted
			response = resp.Content
			if response == "" {
				response = fmt.Sprintf(
					"Stopped after %d tool rounds without a final answer. Try narrowing the request.",
					l.cfg.MaxIterations)
			}
			l.log.Warn().
				Str("sessionId", session.ID).
				Err(&IterationLimitError{Limit: l.cfg.MaxIterations}).
				Msg("aborting conversation")
			break
		}

		state = StateExecutingTools
		iterations++

		calls := make([]llm.ToolCall, len(resp.ToolCalls))
		copy(calls, resp.ToolCalls)
		for i := range calls {
			calls[i].Input = truncateStringArgs(calls[i].Input, l.cfg.MaxArgChars)
		}

		l.log.Info().
			Str("sessionId", session.ID).
			Int("round", round+1).
			Int("calls", len(calls)).
			Msg("executing tool calls")

		modelMsg := llm.Message{Role: llm.RoleModel, Content: resp.Content, ToolCalls: calls}
		messages = append(messages, modelMsg)
		l.persistModelTurn(session.ID, modelMsg)

		results := make([]llm.ToolResult, 0, len(calls))
		for _, call := range calls {
			output, err := l.tools.Dispatch(ctx, call)
			if err != nil {
				l.log.Warn().
					Str("sessionId", session.ID).
					Str("tool", call.Name).
					Err(err).
					Msg("tool call failed")
				results = append(results, llm.ToolResult{
					Name:    call.Name,
					Content: toolErrorPayload(call.Name, err),
					IsError: true,
				})
				continue
			}
			results = append(results, llm.ToolResult{Name: call.Name, Content: output})
		}
		totalCalls += len(calls)

		toolMsg := llm.Message{Role: llm.RoleTool, ToolResults: results}
		messages = append(messages, toolMsg)
		l.persistToolTurn(session.ID, toolMsg)
	}

	l.sessions.Append(session.ID, domain.Turn{
		Role:      domain.RoleModel,
		Content:   response,
		Timestamp: time.Now(),
	})

	l.log.Info().
		Str("sessionId", session.ID).
		Str("state", string(state)).
		Int("iterations", iterations).
		Int("toolCalls", totalCalls).
		Int("inputTokens", usage.InputTokens).
		Int("outputTokens", usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("conversation finished")

	return &Result{
		Response:   response,
		State:      state,
		SessionID:  session.ID,
		Iterations: iterations,
		ToolCalls:  totalCalls,
		Model:      model,
		Usage:      usage,
		Duration:   time.Since(start),
	}, nil
}

// persistModelTurn stores a tool-calling model turn, one record per call.
func (l *Loop) persistModelTurn(sessionID string, msg llm.Message) {
	if len(msg.ToolCalls) == 0 {
		l.sessions.Append(sessionID, domain.Turn{
			Role:      domain.RoleModel,
			Content:   msg.Content,
			Timestamp: time.Now(),
		})
		return
	}
	for i, call := range msg.ToolCalls {
		content := ""
		if i == 0 {
			content = msg.Content
		}
		l.sessions.Append(sessionID, domain.Turn{
			Role:      domain.RoleModel,
			Content:   content,
			ToolName:  call.Name,
			ToolArgs:  call.Input,
			Timestamp: time.Now(),
		})
	}
}

// persistToolTurn stores tool results, one record per result.
func (l *Loop) persistToolTurn(sessionID string, msg llm.Message) {
	for _, result := range msg.ToolResults {
		l.sessions.Append(sessionID, domain.Turn{
			Role:      domain.RoleTool,
			Content:   result.Content,
			ToolName:  result.Name,
			IsError:   result.IsError,
			Timestamp: time.Now(),
		})
	}
}

// truncateStringArgs caps every top-level string value in a JSON
// argument object at max characters, appending the truncation marker.
// Non-object input and short values pass through untouched, so required
// fields stay present and valid.
func truncateStringArgs(input string, max int) string {
	if max <= 0 || len(input) <= max {
		return input
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return input
	}

	changed := false
	for key, val := range args {
		s, ok := val.(string)
		if !ok {
			continue
		}
		runes := []rune(s)
		if len(runes) <= max {
			continue
		}
		args[key] = string(runes[:max]) + " " + truncationMarker
		changed = true
	}
	if !changed {
		return input
	}

	out, err := json.Marshal(args)
	if err != nil {
		return input
	}
	return string(out)
}
