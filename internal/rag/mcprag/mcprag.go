// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mcprag is a reference RagFacet adapter that calls a single
// tool on an external MCP server (stdio transport) to fulfill Search.
// It exercises the RagFacet contract against a real collaborator
// protocol without publishing an MCP server of our own (Non-goal).
package mcprag

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/agentry/internal/rag"
)

// Config configures the MCP server process to launch and the tool on it
// that implements search.
type Config struct {
	Command  string
	Args     []string
	Env      map[string]string
	ToolName string // defaults to "search"
}

// Client lazily connects to the configured MCP server on first Search
// call, mirroring the teacher's mcptoolset lazy-connect shape.
type Client struct {
	cfg Config

	mu        sync.Mutex
	mcpClient *client.Client
	connected bool
}

// New constructs a Client. The MCP server process is not started until
// the first Search call.
func New(cfg Config) (*Client, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("mcprag: command is required")
	}
	if cfg.ToolName == "" {
		cfg.ToolName = "search"
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) connect(ctx context.Context) error {
	if c.connected {
		return nil
	}

	env := make([]string, 0, len(c.cfg.Env))
	for k, v := range c.cfg.Env {
		env = append(env, k+"="+v)
	}

	mcpClient, err := client.NewStdioMCPClient(c.cfg.Command, env, c.cfg.Args...)
	if err != nil {
		return fmt.Errorf("mcprag: creating MCP client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("mcprag: starting MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{Name: "agentry", Version: "0.1.0"}
	initReq.Params.ProtocolVersion = "2024-11-05"
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return fmt.Errorf("mcprag: initializing MCP session: %w", err)
	}

	c.mcpClient = mcpClient
	c.connected = true
	return nil
}

// Search calls the configured MCP tool, passing req's fields as
// arguments, and parses a JSON array of {id, item, score} objects out
// of the tool's text content.
func (c *Client) Search(ctx context.Context, req rag.SearchRequest) ([]rag.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = c.cfg.ToolName
	callReq.Params.Arguments = map[string]any{
		"query":               req.Query,
		"topK":                req.TopK,
		"similarityThreshold": req.SimilarityThreshold,
		"filters":             req.Filters,
	}

	resp, err := c.mcpClient.CallTool(ctx, callReq)
	if err != nil {
		return nil, fmt.Errorf("mcprag: tool call failed: %w", err)
	}
	if resp.IsError {
		return nil, fmt.Errorf("mcprag: tool %q returned an error", c.cfg.ToolName)
	}
	return parseResults(resp)
}

func parseResults(resp *mcp.CallToolResult) ([]rag.Result, error) {
	var out []rag.Result
	for _, content := range resp.Content {
		text, ok := content.(mcp.TextContent)
		if !ok {
			continue
		}
		var batch []rag.Result
		if err := json.Unmarshal([]byte(text.Text), &batch); err != nil {
			return nil, fmt.Errorf("mcprag: parsing tool response: %w", err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Close releases the underlying MCP connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mcpClient == nil {
		return nil
	}
	err := c.mcpClient.Close()
	c.connected = false
	return err
}

var _ rag.RagFacet = (*Client)(nil)
