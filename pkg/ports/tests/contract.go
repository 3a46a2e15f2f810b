package tests

import (
	"testing"

	"github.com/aretw0/parley/pkg/ports"
)

// ScriptLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ScriptLoader.
func ScriptLoaderContractTest(t *testing.T, loader ports.ScriptLoader, setupData map[string][]byte) {
	t.Helper()

	// 1. Test GetScript (Success)
	t.Run("GetScript_Success", func(t *testing.T) {
		for name, expectedContent := range setupData {
			content, err := loader.GetScript(name)
			if err != nil {
				t.Fatalf("unexpected error getting script %s: %v", name, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expectedContent)
			}
		}
	})

	// 2. Test GetScript (NotFound)
	t.Run("GetScript_NotFound", func(t *testing.T) {
		_, err := loader.GetScript("non-existent-script")
		if err == nil {
			t.Error("expected error for non-existent script, got nil")
		}
	})

	// 3. Test ListScripts
	t.Run("ListScripts", func(t *testing.T) {
		scripts, err := loader.ListScripts()
		if err != nil {
			t.Fatalf("unexpected error listing scripts: %v", err)
		}

		if len(scripts) != len(setupData) {
			t.Errorf("expected %d scripts, got %d", len(setupData), len(scripts))
		}

		// Verify all expected names are present
		lookup := make(map[string]bool)
		for _, name := range scripts {
			lookup[name] = true
		}

		for name := range setupData {
			if !lookup[name] {
				t.Errorf("script %s missing from list", name)
			}
		}
	})
}
