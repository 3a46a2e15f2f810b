package script

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse decodes a raw script document into a Script.
// Both YAML and JSON are accepted; documents starting with '{' are treated
// as JSON, everything else goes through the YAML decoder.
// Parse only deserializes; structural validation happens at compile time.
func Parse(data []byte) (Script, error) {
	var s Script

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return s, fmt.Errorf("empty script document")
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(data, &s); err != nil {
			return Script{}, fmt.Errorf("failed to parse script (json): %w", err)
		}
		return s, nil
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script (yaml): %w", err)
	}
	return s, nil
}

// Marshal serializes a Script back to YAML. Used by the memory loader and
// by tooling that round-trips documents.
func Marshal(s Script) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal script: %w", err)
	}
	return out, nil
}
