package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookup(values map[string]bool) ConditionLookup {
	return func(key string) (bool, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestMinimal_And(t *testing.T) {
	p := NewMinimal()
	cases := []struct {
		name string
		vals map[string]bool
		want TriState
	}{
		{"both true", map[string]bool{"A": true, "B": true}, True},
		{"one false", map[string]bool{"A": true, "B": false}, False},
		{"both false", map[string]bool{"A": false, "B": false}, False},
		{"one unknown", map[string]bool{"A": true}, Unknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := p.Evaluate("A AND B", lookup(c.vals))
			assert.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestMinimal_Or(t *testing.T) {
	p := NewMinimal()
	cases := []struct {
		name string
		vals map[string]bool
		want TriState
	}{
		{"one true", map[string]bool{"A": true, "B": false}, True},
		{"both false", map[string]bool{"A": false, "B": false}, False},
		{"one unknown other false", map[string]bool{"B": false}, Unknown},
		{"one unknown other true", map[string]bool{"A": true}, True},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := p.Evaluate("A OR B", lookup(c.vals))
			assert.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestMinimal_Parenthesized(t *testing.T) {
	p := NewMinimal()
	v, err := p.Evaluate("(A AND B) OR C", lookup(map[string]bool{"A": true, "B": false, "C": true}))
	assert.NoError(t, err)
	assert.Equal(t, True, v)
}

func TestMinimal_UndefinedKeyIsUnknownNotError(t *testing.T) {
	p := NewMinimal()
	v, err := p.Evaluate("Ghost", lookup(nil))
	assert.NoError(t, err)
	assert.Equal(t, Unknown, v)
}

func TestMinimal_MalformedIsUnknownNotError(t *testing.T) {
	p := NewMinimal()
	v, err := p.Evaluate("A AND", lookup(map[string]bool{"A": true}))
	assert.NoError(t, err)
	assert.Equal(t, Unknown, v)
}

func TestMinimal_EmptyIsError(t *testing.T) {
	p := NewMinimal()
	_, err := p.Evaluate("", lookup(nil))
	assert.Error(t, err)
}

func TestMinimal_KeywordPrefixDoesNotFalseMatch(t *testing.T) {
	p := NewMinimal()
	// "ANDROID" must not be parsed as keyword AND followed by "ROID".
	v, err := p.Evaluate("ANDROID", lookup(map[string]bool{"ANDROID": true}))
	assert.NoError(t, err)
	assert.Equal(t, True, v)
}
