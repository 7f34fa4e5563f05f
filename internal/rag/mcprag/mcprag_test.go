package mcprag

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresCommand(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_DefaultsToolName(t *testing.T) {
	c, err := New(Config{Command: "echo"})
	require.NoError(t, err)
	assert.Equal(t, "search", c.cfg.ToolName)
}

func TestParseResults_ParsesJSONArray(t *testing.T) {
	resp := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `[{"id":"1","item":{"text":"hello"},"score":0.9}]`},
		},
	}
	got, err := parseResults(resp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 0.9, got[0].Score)
	assert.Equal(t, "hello", got[0].Item["text"])
}

func TestParseResults_MalformedJSONIsError(t *testing.T) {
	resp := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: `not json`},
		},
	}
	_, err := parseResults(resp)
	assert.Error(t, err)
}
