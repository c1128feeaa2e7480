package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SessionKey tests ---

func TestSessionKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  SessionKey
		want string
	}{
		{
			name: "with client",
			key:  SessionKey{Surface: "gateway", ChatID: "chat-1", ClientID: "alice"},
			want: "gateway:chat-1:alice",
		},
		{
			name: "without client",
			key:  SessionKey{Surface: "cli", ChatID: "default"},
			want: "cli:default",
		},
		{
			name: "empty fields",
			key:  SessionKey{},
			want: ":",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestSessionKeyEquality(t *testing.T) {
	k1 := SessionKey{Surface: "cli", ChatID: "a", ClientID: "alice"}
	k2 := SessionKey{Surface: "cli", ChatID: "a", ClientID: "alice"}
	k3 := SessionKey{Surface: "cli", ChatID: "a", ClientID: "bob"}

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Equal(t, k1.String(), k2.String())
	assert.NotEqual(t, k1.String(), k3.String())
}

// --- Turn tests ---

func TestTurnJSONRoundTrip(t *testing.T) {
	turn := Turn{
		Role:      RoleTool,
		Content:   `{"result":"5 papers found"}`,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		ToolName:  "search_papers",
		ToolArgs:  `{"query":"quantum error correction"}`,
	}

	data, err := json.Marshal(turn)
	require.NoError(t, err)

	var decoded Turn
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, turn, decoded)
}

func TestTurnErrorFlagOmittedWhenFalse(t *testing.T) {
	data, err := json.Marshal(Turn{Role: RoleModel, Content: "hi"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "isError")
}

func TestInputWithAttachments(t *testing.T) {
	in := Input{
		Text: "summarize this",
		Files: []Attachment{
			{URI: "files/abc123", MimeType: "application/pdf", Filename: "paper.pdf", Size: 12345},
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var decoded Input
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, "application/pdf", decoded.Files[0].MimeType)
}
