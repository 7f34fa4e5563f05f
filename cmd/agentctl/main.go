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

// Command agentctl is a terminal client for an agentryd server: submit
// a process, poll its status, print its history, or cancel it.
package main

import (
	"github.com/alecthomas/kong"
)

// CLI is agentctl's command-line surface.
type CLI struct {
	Addr  string `help:"agentryd base URL." default:"http://localhost:8080"`
	Token string `help:"Bearer token, if the server requires auth." env:"AGENTCTL_TOKEN"`

	Submit  SubmitCmd  `cmd:"" help:"Submit a new process."`
	Status  StatusCmd  `cmd:"" help:"Show a process's current status."`
	History HistoryCmd `cmd:"" help:"Show a process's plan step history."`
	Cancel  CancelCmd  `cmd:"" help:"Cancel a running process."`
}

func (c *CLI) client() *apiClient {
	return newAPIClient(c.Addr, c.Token)
}

type SubmitCmd struct {
	Agent string `arg:"" help:"Agent name to run."`
	Goal  string `help:"Goal name (omit if the agent has exactly one)."`
}

func (c *SubmitCmd) Run(cli *CLI) error {
	return cli.client().submit(c.Agent, c.Goal)
}

type StatusCmd struct {
	ID string `arg:"" help:"Process ID."`
}

func (c *StatusCmd) Run(cli *CLI) error {
	return cli.client().status(c.ID)
}

type HistoryCmd struct {
	ID string `arg:"" help:"Process ID."`
}

func (c *HistoryCmd) Run(cli *CLI) error {
	return cli.client().history(c.ID)
}

type CancelCmd struct {
	ID string `arg:"" help:"Process ID."`
}

func (c *CancelCmd) Run(cli *CLI) error {
	return cli.client().cancel(c.ID)
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentctl"),
		kong.Description("agentctl talks to an agentryd server."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
