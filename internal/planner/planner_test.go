package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentry/internal/worldstate"
)

func TestPlan_AlreadySatisfiedReturnsEmptyPlan(t *testing.T) {
	goal := Goal{Preconditions: map[string]bool{"it:Person": true}}
	start := worldstate.WorldState{"it:Person": worldstate.True}

	p, err := DefaultOptions().Plan(nil, goal, start)
	require.NoError(t, err)
	assert.Empty(t, p.Actions)
	assert.Equal(t, 0, p.ExploredNodes)
}

func TestPlan_EmptyBlackboardScenario_NoPlan(t *testing.T) {
	// Scenario 1: ingest: UserInput -> Person, goal it:Person, but
	// UserInput is FALSE and no action can produce it.
	ingest := Action{
		Name:          "ingest",
		Preconditions: map[string]bool{"it:UserInput": true},
		Effects:       map[string]bool{"it:Person": true},
	}
	goal := Goal{Preconditions: map[string]bool{"it:Person": true}}
	start := worldstate.WorldState{"it:UserInput": worldstate.False, "it:Person": worldstate.False}

	_, err := DefaultOptions().Plan([]Action{ingest}, goal, start)
	require.Error(t, err)
	var noPlan *ErrNoPlan
	assert.ErrorAs(t, err, &noPlan)
}

func TestPlan_DirectProductionScenario(t *testing.T) {
	// Scenario 2: UserInput is TRUE; ingest produces Person.
	ingest := Action{
		Name:          "ingest",
		Preconditions: map[string]bool{"it:UserInput": true},
		Effects:       map[string]bool{"it:Person": true},
		Cost:          1,
	}
	goal := Goal{Preconditions: map[string]bool{"it:Person": true}}
	start := worldstate.WorldState{"it:UserInput": worldstate.True, "it:Person": worldstate.False}

	p, err := DefaultOptions().Plan([]Action{ingest}, goal, start)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "ingest", p.Actions[0].Name)
}

func TestPlan_TieBreakBySpecificity(t *testing.T) {
	// Scenario 4: equal cost, equal effect; the 3-precondition action wins.
	broad := Action{
		Name:          "broad",
		Preconditions: map[string]bool{"it:A": true},
		Effects:       map[string]bool{"it:Goal": true},
		Cost:          1,
	}
	specific := Action{
		Name: "specific",
		Preconditions: map[string]bool{
			"it:A": true, "it:B": true, "it:C": true,
		},
		Effects: map[string]bool{"it:Goal": true},
		Cost:    1,
	}
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{
		"it:A": worldstate.True, "it:B": worldstate.True, "it:C": worldstate.True,
		"it:Goal": worldstate.False,
	}

	p, err := DefaultOptions().Plan([]Action{broad, specific}, goal, start)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "specific", p.Actions[0].Name)
}

func TestPlan_LowerCostBeatsSpecificity(t *testing.T) {
	// Scenario 5: same actions, but broad costs 1.0 and specific costs 5.0.
	broad := Action{
		Name:          "broad",
		Preconditions: map[string]bool{"it:A": true},
		Effects:       map[string]bool{"it:Goal": true},
		Cost:          1,
	}
	specific := Action{
		Name: "specific",
		Preconditions: map[string]bool{
			"it:A": true, "it:B": true, "it:C": true,
		},
		Effects: map[string]bool{"it:Goal": true},
		Cost:    5,
	}
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{
		"it:A": worldstate.True, "it:B": worldstate.True, "it:C": worldstate.True,
		"it:Goal": worldstate.False,
	}

	p, err := DefaultOptions().Plan([]Action{broad, specific}, goal, start)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "broad", p.Actions[0].Name)
}

func TestPlan_MultiStepOptimality(t *testing.T) {
	// Two ways to reach the goal: a direct 2-step path costing 1+1, and a
	// cheaper-looking-per-step 3-step path costing 0.5*3 = 1.5.
	mkA := Action{Name: "mkA", Effects: map[string]bool{"it:A": true}, Cost: 1}
	mkB := Action{Name: "mkB", Preconditions: map[string]bool{"it:A": true}, Effects: map[string]bool{"it:Goal": true}, Cost: 1}

	slow1 := Action{Name: "slow1", Effects: map[string]bool{"it:S1": true}, Cost: 0.5}
	slow2 := Action{Name: "slow2", Preconditions: map[string]bool{"it:S1": true}, Effects: map[string]bool{"it:S2": true}, Cost: 0.5}
	slow3 := Action{Name: "slow3", Preconditions: map[string]bool{"it:S2": true}, Effects: map[string]bool{"it:Goal": true}, Cost: 0.5}

	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{}

	p, err := DefaultOptions().Plan([]Action{mkA, mkB, slow1, slow2, slow3}, goal, start)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, p.Cost, 0.001, "the cheaper multi-step path wins")
	assert.Len(t, p.Actions, 3)
}

func TestPlan_SoundnessAppliesEffectsInOrder(t *testing.T) {
	step1 := Action{Name: "step1", Effects: map[string]bool{"it:A": true}, Cost: 1}
	step2 := Action{Name: "step2", Preconditions: map[string]bool{"it:A": true}, Effects: map[string]bool{"it:Goal": true}, Cost: 1}
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{}

	p, err := DefaultOptions().Plan([]Action{step1, step2}, goal, start)
	require.NoError(t, err)

	s := start
	for _, a := range p.Actions {
		require.True(t, s.SatisfiedOrUnknown(a.Preconditions), "each action's preconditions must hold when applied")
		s = s.Overlay(a.Effects)
	}
	assert.True(t, s.Satisfied(goal.Preconditions))
}

func TestPlan_IdempotentAcrossCalls(t *testing.T) {
	a := Action{Name: "a", Effects: map[string]bool{"it:Goal": true}, Cost: 1}
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{}

	p1, err1 := DefaultOptions().Plan([]Action{a}, goal, start)
	p2, err2 := DefaultOptions().Plan([]Action{a}, goal, start)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, p1.Actions, p2.Actions)
	assert.Equal(t, p1.Cost, p2.Cost)
}

func TestPlan_WallClockCapExceeded(t *testing.T) {
	a := Action{Name: "a", Preconditions: map[string]bool{"it:Never": true}, Effects: map[string]bool{"it:Goal": true}, Cost: 1}
	mkNever := Action{Name: "never", Effects: map[string]bool{"it:Other": true}, Cost: 1} // keeps closure non-empty, unreachable anyway
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{}

	elapsed := time.Time{}
	now := func() time.Time {
		elapsed = elapsed.Add(time.Second)
		return elapsed
	}

	_, err := PlanWith(now, []Action{a, mkNever}, goal, start, Options{MaxExploredNodes: 1_000_000, MaxDuration: time.Millisecond})
	require.Error(t, err)
}

func TestPlan_ExploredNodeCapExceeded(t *testing.T) {
	// A five-step sequential chain; a budget of 2 explored nodes cannot
	// reach the goal even though a plan exists.
	chain := []Action{
		{Name: "s1", Effects: map[string]bool{"it:S1": true}, Cost: 1},
		{Name: "s2", Preconditions: map[string]bool{"it:S1": true}, Effects: map[string]bool{"it:S2": true}, Cost: 1},
		{Name: "s3", Preconditions: map[string]bool{"it:S2": true}, Effects: map[string]bool{"it:S3": true}, Cost: 1},
		{Name: "s4", Preconditions: map[string]bool{"it:S3": true}, Effects: map[string]bool{"it:S4": true}, Cost: 1},
		{Name: "s5", Preconditions: map[string]bool{"it:S4": true}, Effects: map[string]bool{"it:Goal": true}, Cost: 1},
	}
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{
		"it:S1": worldstate.False, "it:S2": worldstate.False, "it:S3": worldstate.False,
		"it:S4": worldstate.False, "it:Goal": worldstate.False,
	}

	_, err := PlanWith(time.Now, chain, goal, start, Options{MaxExploredNodes: 2, MaxDuration: time.Minute})
	require.Error(t, err)
}

func TestPlan_NoOpSuccessorsDoNotCycle(t *testing.T) {
	noop := Action{Name: "noop", Effects: map[string]bool{}, Cost: 0.1}
	real := Action{Name: "real", Effects: map[string]bool{"it:Goal": true}, Cost: 1}
	goal := Goal{Preconditions: map[string]bool{"it:Goal": true}}
	start := worldstate.WorldState{}

	p, err := DefaultOptions().Plan([]Action{noop, real}, goal, start)
	require.NoError(t, err)
	require.Len(t, p.Actions, 1)
	assert.Equal(t, "real", p.Actions[0].Name)
}
