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

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/term"

	"github.com/kadirpekel/agentry/internal/httpclient"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// colorize skips ANSI codes entirely when stdout isn't a terminal (a
// pipe, a log file), the same term.IsTerminal gate the teacher's
// approval prompt uses before coloring its own output.
func colorize(s, color string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return color + s + colorReset
}

type apiClient struct {
	addr  string
	token string
	http  *httpclient.Client
}

func newAPIClient(addr, token string) *apiClient {
	return &apiClient{addr: addr, token: token, http: httpclient.New(httpclient.WithMaxRetries(2))}
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.addr+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling agentryd: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("agentryd returned %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

type submitRequest struct {
	Agent string `json:"agent"`
	Goal  string `json:"goal,omitempty"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	StuckReason string `json:"stuckReason,omitempty"`
}

type planStep struct {
	ActionName string `json:"actionName"`
	Outcome    string `json:"outcome"`
	ErrorKind  string `json:"errorKind,omitempty"`
	Attempt    int    `json:"attempt"`
}

type historyResponse struct {
	ID      string     `json:"id"`
	History []planStep `json:"history"`
}

func (c *apiClient) submit(agent, goal string) error {
	var resp submitResponse
	if err := c.do(http.MethodPost, "/processes/", submitRequest{Agent: agent, Goal: goal}, &resp); err != nil {
		return err
	}
	fmt.Println(colorize(resp.ID, colorGreen))
	return nil
}

func (c *apiClient) status(id string) error {
	var resp statusResponse
	if err := c.do(http.MethodGet, "/processes/"+id, nil, &resp); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", resp.ID, colorize(resp.Status, statusColor(resp.Status)))
	if resp.StuckReason != "" {
		fmt.Printf("  stuck: %s\n", resp.StuckReason)
	}
	return nil
}

func (c *apiClient) history(id string) error {
	var resp historyResponse
	if err := c.do(http.MethodGet, "/processes/"+id+"/history", nil, &resp); err != nil {
		return err
	}
	for _, step := range resp.History {
		line := fmt.Sprintf("#%d %-20s %s", step.Attempt, step.ActionName, step.Outcome)
		if step.ErrorKind != "" {
			line += " (" + step.ErrorKind + ")"
		}
		fmt.Println(line)
	}
	return nil
}

func (c *apiClient) cancel(id string) error {
	return c.do(http.MethodPost, "/processes/"+id+"/cancel", nil, nil)
}

func statusColor(status string) string {
	switch status {
	case "COMPLETED":
		return colorGreen
	case "FAILED", "STUCK":
		return colorRed
	default:
		return colorReset
	}
}
