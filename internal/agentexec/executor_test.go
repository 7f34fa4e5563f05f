package agentexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentry/internal/agentmodel"
	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/llm"
	"github.com/kadirpekel/agentry/internal/planner"
	"github.com/kadirpekel/agentry/internal/process"
)

type recordingClient struct {
	lastPrompt string
	response   string
}

func (c *recordingClient) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
	c.lastPrompt = prompt
	return c.response, nil
}

func (c *recordingClient) GenerateStructured(_ context.Context, _ string, _ llm.StructuredOutputConfig) (map[string]any, error) {
	return map[string]any{}, nil
}

func TestExecutor_RendersPromptFromBlackboardAndProducesEffects(t *testing.T) {
	board := blackboard.New(nil, nil)
	_, err := board.Append(map[string]any{"type": "UserInput", "text": "hello there"}, nil)
	require.NoError(t, err)

	client := &recordingClient{response: "Person{Name: hello there}"}
	exec := New(client, nil)

	action := agentmodel.Action{
		Action: planner.Action{
			Name:          "ingest",
			Preconditions: map[string]bool{"it:UserInput": true},
			Effects:       map[string]bool{"it:Person": true},
		},
		ExecutorType:   "llm",
		ExecutorPrompt: "Extract a Person from: {{.UserInput.text}}",
	}

	proc, err := process.New("p1", &agentmodel.Agent{
		Name:    "greeter",
		Actions: []agentmodel.Action{action},
		Goals:   []agentmodel.Goal{{Goal: planner.Goal{Name: "have-person", Preconditions: map[string]bool{"it:Person": true}}}},
	}, nil, board, nil, nil, process.Options{})
	require.NoError(t, err)

	result, err := exec.Execute(context.Background(), proc, action)
	require.NoError(t, err)

	assert.Equal(t, "Extract a Person from: hello there", client.lastPrompt)
	require.Len(t, result.ProducedValues, 1)
	assert.Equal(t, "Person", result.ProducedValues[0].Value.(map[string]any)["type"])
}

func TestExecutor_NonLLMActionUsesFallback(t *testing.T) {
	called := false
	exec := New(nil, func(ctx context.Context, proc *process.AgentProcess, action agentmodel.Action) (process.ActionResult, error) {
		called = true
		return process.ActionResult{}, nil
	})

	action := agentmodel.Action{Action: planner.Action{Name: "custom"}, ExecutorType: "tool"}
	_, err := exec.Execute(context.Background(), nil, action)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestExecutor_NoFallbackRejectsUnknownType(t *testing.T) {
	exec := New(nil, nil)
	action := agentmodel.Action{Action: planner.Action{Name: "custom"}, ExecutorType: "tool"}
	_, err := exec.Execute(context.Background(), nil, action)
	assert.Error(t, err)
}
