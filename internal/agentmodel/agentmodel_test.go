package agentmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
dictionary:
  types:
    - name: UserInput
      kind: dynamic
      properties:
        - {name: text, type: string}
    - name: Person
      kind: dynamic
      properties:
        - {name: name, type: string}
    - name: AllOfTheAbove
      kind: dynamic
      aggregationOf: [UserInput, Person]

agents:
  - name: greeter
    actions:
      - name: ingest
        preconditions: {"it:UserInput": true}
        effects: {"it:Person": true}
        cost: 1.0
    goals:
      - name: have-person
        preconditions: {"it:Person": true}
`

func TestLoadBytes_ParsesCatalog(t *testing.T) {
	cat, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, cat.Dictionary.Types, 3)
	require.Len(t, cat.Agents, 1)
	assert.Equal(t, "greeter", cat.Agents[0].Name)
}

func TestBuild_DictionaryAndAgents(t *testing.T) {
	cat, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)

	dict, agents, err := Build(cat, BuildOptions{})
	require.NoError(t, err)

	require.NotNil(t, dict.ByName("UserInput"))
	require.NotNil(t, dict.ByName("Person"))
	aggType := dict.ByName("AllOfTheAbove")
	require.NotNil(t, aggType)

	require.Len(t, agents, 1)
	agent := agents[0]
	assert.Equal(t, "greeter", agent.Name)
	require.Len(t, agent.Actions, 1)
	assert.Equal(t, "ingest", agent.Actions[0].Name)
	assert.Equal(t, 1.0, agent.Actions[0].Cost)
	require.Len(t, agent.Goals, 1)
	assert.Equal(t, "have-person", agent.Goals[0].Name)
}

func TestBuild_AggregationComponentsAreDomainTypedProperties(t *testing.T) {
	cat, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)
	dict, _, err := Build(cat, BuildOptions{})
	require.NoError(t, err)

	aggType := dict.ByName("AllOfTheAbove")
	props := aggType.Properties()
	require.Len(t, props, 2)
	for _, p := range props {
		assert.True(t, p.IsDomainTyped)
	}
}

func TestAgent_Keys_DeduplicatesAcrossActionsAndGoals(t *testing.T) {
	cat, err := LoadBytes([]byte(sampleCatalog))
	require.NoError(t, err)
	_, agents, err := Build(cat, BuildOptions{})
	require.NoError(t, err)

	keys := agents[0].Keys()
	assert.ElementsMatch(t, []string{"it:UserInput", "it:Person"}, keys)
}

func TestBuild_ForwardParentReferenceResolves(t *testing.T) {
	const withParents = `
dictionary:
  types:
    - name: Dog
      kind: dynamic
      parents: [Animal]
    - name: Animal
      kind: dynamic
`
	cat, err := LoadBytes([]byte(withParents))
	require.NoError(t, err)
	dict, _, err := Build(cat, BuildOptions{})
	require.NoError(t, err)

	dog := dict.ByName("Dog")
	animal := dict.ByName("Animal")
	require.NotNil(t, dog)
	require.NotNil(t, animal)
	assert.True(t, animal.IsAssignableFrom(dog))
}

func TestBuild_UnknownParentIsError(t *testing.T) {
	const bad = `
dictionary:
  types:
    - name: Dog
      kind: dynamic
      parents: [Ghost]
`
	cat, err := LoadBytes([]byte(bad))
	require.NoError(t, err)
	_, _, err = Build(cat, BuildOptions{})
	assert.Error(t, err)
}

func TestExpandEnv_DefaultAndBraced(t *testing.T) {
	t.Setenv("AGENTRY_TEST_VAR", "hello")
	got := expandEnv("value: ${AGENTRY_TEST_VAR} fallback: ${MISSING_VAR:-world}")
	assert.Equal(t, "value: hello fallback: world", got)
}
