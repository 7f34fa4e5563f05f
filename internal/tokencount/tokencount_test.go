package tokencount

import "testing"

func TestEstimateCost(t *testing.T) {
	cases := []struct {
		tokens   int
		rate     float64
		expected float64
	}{
		{1000, 0.002, 0.002},
		{500, 0.002, 0.001},
		{0, 0.002, 0},
	}
	for _, c := range cases {
		got := EstimateCost(c.tokens, c.rate)
		if got != c.expected {
			t.Errorf("EstimateCost(%d, %v) = %v, want %v", c.tokens, c.rate, got, c.expected)
		}
	}
}
