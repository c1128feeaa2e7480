package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/soyeahso/arena/internal/agent"
	"github.com/soyeahso/arena/internal/domain"
	"github.com/soyeahso/arena/internal/logging"
	"github.com/soyeahso/arena/internal/version"
)

// maxChatBodyBytes bounds the POST /api/chat request body.
const maxChatBodyBytes = 1 << 20

// chatRequest is the body of POST /api/chat and of WebSocket chat frames.
type chatRequest struct {
	ID      string `json:"id,omitempty"` // echoed back on WebSocket frames
	Message string `json:"message"`
	ChatID  string `json:"chatId,omitempty"`
}

// chatResponse is the reply to a chat request.
type chatResponse struct {
	ID         string    `json:"id,omitempty"`
	Type       string    `json:"type,omitempty"` // WebSocket frames only
	Response   string    `json:"response"`
	State      string    `json:"state"`
	SessionID  string    `json:"sessionId"`
	Model      string    `json:"model,omitempty"`
	Iterations int       `json:"iterations"`
	ToolCalls  int       `json:"toolCalls"`
	Usage      UsageInfo `json:"usage"`
	DurationMs int64     `json:"durationMs"`
}

// UsageInfo is the token accounting reported to clients.
type UsageInfo struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

func chatResponseFrom(result *agent.Result) chatResponse {
	return chatResponse{
		Response:   result.Response,
		State:      string(result.State),
		SessionID:  result.SessionID,
		Model:      result.Model,
		Iterations: result.Iterations,
		ToolCalls:  result.ToolCalls,
		Usage: UsageInfo{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		},
		DurationMs: result.Duration.Milliseconds(),
	}
}

// handleHealth returns the server health status. Only coarse fields are
// exposed because the endpoint is unauthenticated.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleChat runs one loop round-trip for the posted message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = "default"
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	result, err := s.loop.Run(ctx,
		domain.SessionKey{Surface: "gateway", ChatID: chatID},
		domain.Input{Text: req.Message},
	)
	if err != nil {
		s.log.Error().Err(err).Msg("chat request failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponseFrom(result))
}

// handleLogs serves the in-memory log buffer, filtered by level.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	min := zerolog.InfoLevel
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := zerolog.ParseLevel(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown level: "+raw)
			return
		}
		min = parsed
	}

	var records []logging.Record
	if s.sink != nil {
		records = s.sink.Query(min)
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+raw)
			return
		}
		if limit < len(records) {
			records = records[len(records)-limit:]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// handleSessions lists known session IDs.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.List()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
