package compiler

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Angle is a rotation angle in radians. In source files it may be written
// as a number or as a multiple of pi: "pi", "-pi/2", "3*pi/4", "0.5pi".
type Angle float64

var piPattern = regexp.MustCompile(`^([+-])?\s*(?:(\d+(?:\.\d*)?|\.\d+)\s*\*?\s*)?(?:pi|π)(?:\s*/\s*(\d+(?:\.\d*)?))?$`)

// ParseAngle parses a number or a pi expression.
func ParseAngle(s string) (Angle, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("angle %q is not finite", s)
		}
		return Angle(v), nil
	}
	m := piPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, fmt.Errorf("invalid angle %q", s)
	}
	v := math.Pi
	if m[2] != "" {
		coef, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid angle %q: %w", s, err)
		}
		v *= coef
	}
	if m[3] != "" {
		div, err := strconv.ParseFloat(m[3], 64)
		if err != nil || div == 0 {
			return 0, fmt.Errorf("invalid angle %q: bad divisor", s)
		}
		v /= div
	}
	if m[1] == "-" {
		v = -v
	}
	return Angle(v), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Angle) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: angle must be a scalar", node.Line)
	}
	v, err := ParseAngle(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*a = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Angle) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = Angle(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("angle must be a number or string: %s", data)
	}
	v, err := ParseAngle(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
