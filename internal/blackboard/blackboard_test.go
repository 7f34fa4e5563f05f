package blackboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentry/internal/domain"
)

func dogAnimalOrganism() (organism, animal, dog, point *domain.Type) {
	organism = domain.NewDynamicType("Organism", nil, nil)
	animal = domain.NewDynamicType("Animal", nil, []*domain.Type{organism})
	dog = domain.NewDynamicType("Dog", nil, []*domain.Type{animal})
	point = domain.NewDynamicType("Point", nil, nil)
	return
}

func TestAppend_IsOrderPreservingAndImmutable(t *testing.T) {
	b := New(nil, nil)
	h1, err := b.Append("first", nil)
	require.NoError(t, err)
	h2, err := b.Append("second", nil)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	bindings := b.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, "first", bindings[0].Value)
	assert.Equal(t, "second", bindings[1].Value)
}

func TestAppend_RejectsNil(t *testing.T) {
	b := New(nil, nil)
	_, err := b.Append(nil, nil)
	require.Error(t, err)
}

func TestBind_RejectsEmptyName(t *testing.T) {
	b := New(nil, nil)
	_, err := b.Bind("", "x", nil)
	require.Error(t, err)
}

func TestGet_NewestNonHiddenWins(t *testing.T) {
	b := New(nil, nil)
	_, _ = b.Bind("x", 1, nil)
	_, _ = b.Bind("x", 2, nil)

	v, ok := b.Get("x")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestHide_IsMonotonicAndIdempotent(t *testing.T) {
	b := New(nil, nil)
	h, _ := b.Bind("x", 1, nil)

	b.Hide(h)
	_, ok := b.Get("x")
	assert.False(t, ok)

	// Hiding again, or hiding a handle that was never appended, is a no-op.
	b.Hide(h)
	b.Hide(Handle(9999))
	_, ok = b.Get("x")
	assert.False(t, ok)
}

func TestHide_DoesNotAffectOtherBindings(t *testing.T) {
	b := New(nil, nil)
	h1, _ := b.Bind("x", 1, nil)
	_, _ = b.Bind("y", 2, nil)

	b.Hide(h1)
	_, ok := b.Get("y")
	assert.True(t, ok)
}

func TestGetValue_TypeChainResolution(t *testing.T) {
	_, animal, dog, point := dogAnimalOrganism()
	dict := domain.NewDataDictionary(animal, dog, point)
	b := New(dict, nil)

	_, err := b.Append(map[string]any{"name": "Rex"}, dog)
	require.NoError(t, err)

	v, ok := b.GetValue(DefaultBinding, "Animal")
	require.True(t, ok, "Dog is assignable to Animal")
	assert.Equal(t, "Rex", v.(map[string]any)["name"])

	_, ok = b.GetValue(DefaultBinding, "Point")
	assert.False(t, ok, "Dog is not assignable to Point")
}

func TestGetValue_NamedBindingScopesSearch(t *testing.T) {
	_, _, dog, point := dogAnimalOrganism()
	dict := domain.NewDataDictionary(dog, point)
	b := New(dict, nil)

	_, _ = b.Bind("pet", map[string]any{"name": "Rex"}, dog)

	_, ok := b.GetValue("pet", "Dog")
	assert.True(t, ok)

	_, ok = b.GetValue("pet", "Point")
	assert.False(t, ok, "named binding exists but isn't a Point")
}

func TestGetValue_HideThenRetrieve(t *testing.T) {
	_, _, dog, _ := dogAnimalOrganism()
	dict := domain.NewDataDictionary(dog)
	b := New(dict, nil)

	h1, _ := b.Append(map[string]any{"name": "Rex"}, dog)
	_, _ = b.Append(map[string]any{"name": "Fido"}, dog)

	b.Hide(h1)
	v, ok := b.GetValue(DefaultBinding, "Dog")
	require.True(t, ok)
	assert.Equal(t, "Fido", v.(map[string]any)["name"], "hidden binding must not resurface")
}

type aggregationStub struct {
	calledWithTypeName string
	value              any
	ok                 bool
}

func (s *aggregationStub) Resolve(b *Blackboard, typeName string, dict *domain.DataDictionary) (any, *domain.Type, bool) {
	s.calledWithTypeName = typeName
	if !s.ok {
		return nil, nil, false
	}
	return s.value, nil, true
}

func TestGetValue_FallsBackToAggregationResolver(t *testing.T) {
	stub := &aggregationStub{value: "synthesized", ok: true}
	b := New(domain.NewDataDictionary(), stub)

	v, ok := b.GetValue(DefaultBinding, "TotalCost")
	require.True(t, ok)
	assert.Equal(t, "synthesized", v)
	assert.Equal(t, "TotalCost", stub.calledWithTypeName)
}

func TestGetValue_AggregationSeesHiddenValues(t *testing.T) {
	// The resolver receives the blackboard itself, so it can read hidden
	// bindings via Bindings()+IsHidden even though GetValue's direct
	// lookup ignores them.
	_, _, dog, _ := dogAnimalOrganism()
	dict := domain.NewDataDictionary(dog)

	seesHidden := false
	resolver := resolverFunc(func(b *Blackboard, typeName string, d *domain.DataDictionary) (any, *domain.Type, bool) {
		for _, bd := range b.Bindings() {
			if b.IsHidden(bd.Handle) {
				seesHidden = true
			}
		}
		return nil, nil, false
	})

	b := New(dict, resolver)
	h, _ := b.Append(map[string]any{"name": "Rex"}, dog)
	b.Hide(h)

	_, _ = b.GetValue(DefaultBinding, "Nonexistent")
	assert.True(t, seesHidden)
}

type resolverFunc func(b *Blackboard, typeName string, dict *domain.DataDictionary) (any, *domain.Type, bool)

func (f resolverFunc) Resolve(b *Blackboard, typeName string, dict *domain.DataDictionary) (any, *domain.Type, bool) {
	return f(b, typeName, dict)
}

func TestConditions_LastWriteWins(t *testing.T) {
	b := New(nil, nil)
	_, ok := b.GetCondition("ready")
	assert.False(t, ok)

	b.SetCondition("ready", true)
	v, ok := b.GetCondition("ready")
	require.True(t, ok)
	assert.True(t, v)

	b.SetCondition("ready", false)
	v, ok = b.GetCondition("ready")
	require.True(t, ok)
	assert.False(t, v)
}

func TestConditions_SnapshotIsACopy(t *testing.T) {
	b := New(nil, nil)
	b.SetCondition("a", true)
	snap := b.Conditions()
	snap["a"] = false

	v, _ := b.GetCondition("a")
	assert.True(t, v, "mutating the snapshot must not affect the blackboard")
}

func TestMatches_RawMapFallsBackToTypeTag(t *testing.T) {
	b := New(domain.NewDataDictionary(), nil)
	_, _ = b.Append(map[string]any{"type": "Invoice", "amount": 10}, nil)

	v, ok := b.GetValue(DefaultBinding, "Invoice")
	require.True(t, ok)
	assert.Equal(t, 10, v.(map[string]any)["amount"])
}
