package compiler

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAngle(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"0", 0},
		{"1.25", 1.25},
		{"-0.5", -0.5},
		{"pi", math.Pi},
		{"-pi", -math.Pi},
		{"pi/2", math.Pi / 2},
		{"-pi/4", -math.Pi / 4},
		{"3*pi/4", 3 * math.Pi / 4},
		{"0.5pi", math.Pi / 2},
		{" 2 * PI ", 2 * math.Pi},
		{"π/2", math.Pi / 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, err := ParseAngle(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, float64(a), 1e-15)
		})
	}
}

func TestParseAngleRejects(t *testing.T) {
	for _, input := range []string{"", "tau", "pi/0", "NaN", "inf", "pi pi"} {
		_, err := ParseAngle(input)
		assert.Error(t, err, input)
	}
}

func TestAngleUnmarshal(t *testing.T) {
	var fromYAML []Angle
	require.NoError(t, yaml.Unmarshal([]byte(`[1.5, pi/2, "-pi"]`), &fromYAML))
	assert.InDeltaSlice(t, []float64{1.5, math.Pi / 2, -math.Pi}, anglesToFloats(fromYAML), 1e-15)

	var fromJSON []Angle
	require.NoError(t, json.Unmarshal([]byte(`[1.5, "pi/2"]`), &fromJSON))
	assert.InDeltaSlice(t, []float64{1.5, math.Pi / 2}, anglesToFloats(fromJSON), 1e-15)

	var bad Angle
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func anglesToFloats(as []Angle) []float64 {
	out := make([]float64, len(as))
	for i, a := range as {
		out[i] = float64(a)
	}
	return out
}
