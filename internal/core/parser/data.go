package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Octrafic/stepexec/internal/core/tester"
)

// LoadVars reads a variable context file. An empty path yields an empty
// context.
func LoadVars(path string) (tester.Vars, error) {
	m, err := loadMapping(path)
	if err != nil {
		return nil, err
	}
	return tester.Vars(m), nil
}

// LoadFixtures reads a fixture file keyed by operation id.
func LoadFixtures(path string) (tester.Fixtures, error) {
	m, err := loadMapping(path)
	if err != nil {
		return nil, err
	}
	return tester.Fixtures(m), nil
}

func loadMapping(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSONMapping(content)
	case ".yaml", ".yml":
		return DecodeYAMLMapping(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecodeJSONMapping decodes a JSON object. Numbers keep their literal form.
func DecodeJSONMapping(content []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()

	var m map[string]any
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// DecodeYAMLMapping decodes a YAML mapping with string keys at every level.
func DecodeYAMLMapping(content []byte) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	m, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to parse YAML: root must be a mapping")
	}
	return m, nil
}

// normalize turns map[any]any into map[string]any so values can be JSON
// encoded.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	}
	return v
}
