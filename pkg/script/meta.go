package script

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// decodeHeader maps a loosely parsed meta block onto m. Known keys fill
// the typed fields, every other key lands in Extra with its value coerced
// to a string.
func (m *Metadata) decodeHeader(raw map[string]any) error {
	if len(raw) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           m,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid meta block: %w", err)
	}
	return nil
}

// headerMap flattens the metadata back into a single map, writing Extra
// keys next to the known ones. Known fields win on collision.
func (m Metadata) headerMap() map[string]any {
	out := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if len(m.Tags) > 0 {
		out["tags"] = m.Tags
	}
	return out
}

func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return m.decodeHeader(raw)
}

// MarshalYAML inlines Extra keys at the top level of the block, so a
// parsed document round-trips to the same shape.
func (m Metadata) MarshalYAML() (any, error) {
	return m.headerMap(), nil
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return m.decodeHeader(raw)
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.headerMap())
}
