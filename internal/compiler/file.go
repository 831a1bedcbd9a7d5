package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ionc/internal/ir"
)

// CircuitFile is the YAML/JSON document holding one or more circuits.
type CircuitFile struct {
	Circuits []CircuitSpec `json:"circuits" yaml:"circuits"`
}

// ParseYAML decodes a circuit file. Unknown fields are rejected to catch
// typos.
func ParseYAML(data []byte) (*CircuitFile, error) {
	var f CircuitFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty circuit file")
		}
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &f, nil
}

// ParseJSON decodes a circuit file, rejecting unknown fields.
func ParseJSON(data []byte) (*CircuitFile, error) {
	var f CircuitFile
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return &f, nil
}

// LoadFile reads a YAML (.yaml, .yml) or JSON (.json) circuit file and
// builds every circuit in it. Circuits without a name are named after the
// file and their index.
func LoadFile(path string) ([]*ir.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read circuit file: %w", err)
	}

	var f *CircuitFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	case ".json":
		f, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported circuit file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(f.Circuits) == 0 {
		return nil, fmt.Errorf("%s: no circuits", path)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	circuits := make([]*ir.Circuit, 0, len(f.Circuits))
	for i, spec := range f.Circuits {
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("%s[%d]", base, i)
		}
		c, err := BuildCircuit(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: circuit %q: %w", path, spec.Name, err)
		}
		circuits = append(circuits, c)
	}
	return circuits, nil
}
