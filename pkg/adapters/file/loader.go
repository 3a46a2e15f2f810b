package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/parley/pkg/ports"
)

// extensions lists the document suffixes the loader recognizes, in lookup
// priority order.
var extensions = []string{".yaml", ".yml", ".json"}

// debounce coalesces the event bursts editors emit on save
// (rename + create + write within a few milliseconds).
const debounce = 100 * time.Millisecond

// Loader implements ports.ScriptLoader over a directory of script documents.
// A script named "intro" resolves to intro.yaml, intro.yml or intro.json
// under the root, in that order.
type Loader struct {
	root string
}

// New creates a Loader rooted at the given directory.
// If root is empty, it defaults to the current directory.
func New(root string) *Loader {
	if root == "" {
		root = "."
	}
	return &Loader{root: root}
}

// Root returns the directory the loader reads from.
func (l *Loader) Root() string {
	return l.root
}

// GetScript retrieves the raw document of a script by name.
func (l *Loader) GetScript(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(l.root, name+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read script %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrScriptNotFound, name)
}

// ListScripts returns the names of all script documents under the root,
// sorted and deduplicated.
func (l *Loader) ListScripts() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := scriptName(entry.Name())
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Watch implements ports.Watchable. It emits the name of a script whenever
// its document is written, created, renamed or removed. Events inside the
// debounce window collapse into one notification per script.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	if err := watcher.Add(l.root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.root, err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()

		pending := make(map[string]struct{})
		var flush <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				name, ok := scriptName(filepath.Base(evt.Name))
				if !ok {
					continue
				}
				pending[name] = struct{}{}
				if flush == nil {
					flush = time.After(debounce)
				}
			case <-flush:
				for name := range pending {
					select {
					case ch <- name:
					case <-ctx.Done():
						return
					}
					delete(pending, name)
				}
				flush = nil
			case _, ok := <-watcher.Errors:
				// Drain so the watcher never blocks; a broken watcher
				// surfaces as a closed Events channel.
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

// scriptName strips a recognized extension from a file name. The bool is
// false for files the loader does not serve.
func scriptName(base string) (string, bool) {
	ext := filepath.Ext(base)
	for _, known := range extensions {
		if ext == known {
			return strings.TrimSuffix(base, ext), true
		}
	}
	return "", false
}

// checkName rejects names that would resolve outside the root.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("script name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid script name: %s", name)
	}
	return nil
}
