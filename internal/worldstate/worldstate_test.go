package worldstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentry/internal/blackboard"
	"github.com/kadirpekel/agentry/internal/domain"
	"github.com/kadirpekel/agentry/internal/expr"
)

func TestDetermine_ItKey(t *testing.T) {
	organism := domain.NewDynamicType("Organism", nil, nil)
	animal := domain.NewDynamicType("Animal", nil, []*domain.Type{organism})
	dog := domain.NewDynamicType("Dog", nil, []*domain.Type{animal})
	point := domain.NewDynamicType("Point", nil, nil)
	dict := domain.NewDataDictionary(organism, animal, dog, point)

	b := blackboard.New(dict, nil)
	_, _ = b.Append(map[string]any{"name": "Rex"}, dog)

	ws := Determine(b, dict, expr.NewMinimal(), []string{"it:Animal", "it:Point"})
	assert.Equal(t, True, ws["it:Animal"])
	assert.Equal(t, False, ws["it:Point"])
}

func TestDetermine_NameKey(t *testing.T) {
	dog := domain.NewDynamicType("Dog", nil, nil)
	point := domain.NewDynamicType("Point", nil, nil)
	dict := domain.NewDataDictionary(dog, point)

	b := blackboard.New(dict, nil)
	_, _ = b.Bind("pet", map[string]any{"name": "Rex"}, dog)

	ws := Determine(b, dict, expr.NewMinimal(), []string{"name:pet/Dog", "name:pet/Point", "name:missing/Dog"})
	assert.Equal(t, True, ws["name:pet/Dog"])
	assert.Equal(t, False, ws["name:pet/Point"])
	assert.Equal(t, False, ws["name:missing/Dog"])
}

func TestDetermine_ExprKey(t *testing.T) {
	dict := domain.NewDataDictionary()
	b := blackboard.New(dict, nil)
	b.SetCondition("A", true)
	b.SetCondition("B", false)

	ws := Determine(b, dict, expr.NewMinimal(), []string{"expr:A AND B", "expr:A OR B"})
	assert.Equal(t, False, ws["expr:A AND B"])
	assert.Equal(t, True, ws["expr:A OR B"])
}

func TestDetermine_UnknownKeyShapeIsUnknown(t *testing.T) {
	dict := domain.NewDataDictionary()
	b := blackboard.New(dict, nil)
	ws := Determine(b, dict, expr.NewMinimal(), []string{"bogus:X"})
	assert.Equal(t, Unknown, ws["bogus:X"])
}

func TestWorldState_Satisfied(t *testing.T) {
	ws := WorldState{"a": True, "b": False}
	assert.True(t, ws.Satisfied(map[string]bool{"a": true, "b": false}))
	assert.False(t, ws.Satisfied(map[string]bool{"a": true, "b": true}))
	assert.False(t, ws.Satisfied(map[string]bool{"c": true}), "missing key never satisfies")
}

func TestWorldState_SatisfiedOrUnknown(t *testing.T) {
	ws := WorldState{"a": True}
	assert.True(t, ws.SatisfiedOrUnknown(map[string]bool{"a": true, "b": true}), "missing key (unknown) never blocks")
	assert.False(t, ws.SatisfiedOrUnknown(map[string]bool{"a": false}), "explicit mismatch blocks")
}

func TestWorldState_Overlay(t *testing.T) {
	ws := WorldState{"a": True, "b": False}
	out := ws.Overlay(map[string]bool{"b": true, "c": true})

	require.Equal(t, True, out["a"])
	require.Equal(t, True, out["b"], "effect overwrites prior value")
	require.Equal(t, True, out["c"])
	assert.Equal(t, False, ws["b"], "Overlay must not mutate the receiver")
}
