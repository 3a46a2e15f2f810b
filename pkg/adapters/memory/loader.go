package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/script"
)

// Loader implements ports.ScriptLoader using an in-memory map.
type Loader struct {
	scripts map[string][]byte
}

// NewLoader creates a new memory Loader with the provided raw documents
// (YAML or JSON strings).
func NewLoader(data map[string]string) *Loader {
	scripts := make(map[string][]byte)
	for k, v := range data {
		scripts[k] = []byte(v)
	}
	return &Loader{
		scripts: scripts,
	}
}

// NewFromScripts creates a new memory Loader from script values.
// This handles serialization automatically, improving DX for tests.
func NewFromScripts(scripts map[string]script.Script) (*Loader, error) {
	data := make(map[string][]byte)
	for name, s := range scripts {
		if name == "" {
			return nil, fmt.Errorf("script missing name")
		}
		bytes, err := script.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal script %s: %w", name, err)
		}
		data[name] = bytes
	}
	return &Loader{scripts: data}, nil
}

// GetScript retrieves the raw document of a script by name.
func (l *Loader) GetScript(name string) ([]byte, error) {
	content, ok := l.scripts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrScriptNotFound, name)
	}
	return content, nil
}

// ListScripts returns all available script names.
func (l *Loader) ListScripts() ([]string, error) {
	keys := make([]string, 0, len(l.scripts))
	for k := range l.scripts {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
