package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prismscan/prism/schema"
)

// PluginInfo describes a registered plugin without exposing it.
type PluginInfo struct {
	Name       string
	Languages  []schema.Language
	Categories []schema.Category
}

// Registry binds plugin names to implementations. Construct one at
// bootstrap, register every plugin, and hand it to the engine; after
// bootstrap it is only read. The mutex guards against misuse rather
// than an expected write load.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// validate checks the plugin contract at registration time, replacing
// the runtime duck-typing a dynamic registry would need.
func validate(p Plugin) error {
	if p == nil {
		return fmt.Errorf("%w: nil plugin", ErrInvalidPlugin)
	}
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPlugin)
	}
	langs := p.Languages()
	if len(langs) == 0 {
		return fmt.Errorf("%w: plugin %q declares no languages", ErrInvalidPlugin, name)
	}
	for _, lang := range langs {
		if lang == schema.LanguageAny {
			continue
		}
		if _, ok := schema.ValidLanguages[lang]; !ok {
			return fmt.Errorf("%w: plugin %q declares unknown language %q", ErrInvalidPlugin, name, lang)
		}
	}
	cats := p.Categories()
	if len(cats) == 0 {
		return fmt.Errorf("%w: plugin %q declares no categories", ErrInvalidPlugin, name)
	}
	for _, cat := range cats {
		if _, ok := schema.ValidCategories[cat]; !ok {
			return fmt.Errorf("%w: plugin %q declares unknown category %q", ErrInvalidPlugin, name, cat)
		}
	}
	return nil
}

// Register adds a plugin binding after contract validation.
// Registering a name twice replaces the earlier binding.
func (r *Registry) Register(p Plugin) error {
	if err := validate(p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name()] = p
	return nil
}

// Get returns the plugin bound to name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPluginNotFound, name)
	}
	return p, nil
}

// List returns a defensive copy of all bindings, sorted by name.
func (r *Registry) List() []PluginInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PluginInfo, 0, len(r.plugins))
	for _, p := range r.plugins {
		info := PluginInfo{Name: p.Name()}
		info.Languages = append(info.Languages, p.Languages()...)
		info.Categories = append(info.Categories, p.Categories()...)
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Clear removes every binding. Subsequent Get calls fail until
// plugins are registered again.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins = make(map[string]Plugin)
}

// ForLanguage returns the plugins applicable to a submission language:
// every plugin declaring the language plus every language-agnostic
// plugin, in deterministic name order.
func (r *Registry) ForLanguage(lang schema.Language) []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Plugin
	for _, p := range r.plugins {
		for _, declared := range p.Languages() {
			if declared == lang || declared == schema.LanguageAny {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
