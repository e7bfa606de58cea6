package plugin

import (
	"expvar"
	"log"
	"sync"
)

// Plugin is an extension compiled into the engine binary. Register is
// called once with the shared registry and may add systems, block
// traits, time actions and hooks.
type Plugin interface {
	Meta() Meta
	Register(reg Registry) error
}

// Metrics for plugin loading.
var (
	pluginLoadCount  = expvar.NewInt("plugins_loaded")
	pluginErrorCount = expvar.NewInt("plugins_errors")
)

// Manager loads compiled-in plugins into a registry.
type Manager struct {
	// ConfigDir is where per-plugin YAML configs live; may be empty.
	ConfigDir string

	plugins []Plugin
	mu      sync.Mutex
}

// NewManager creates a Manager with a config directory.
func NewManager(configDir string) *Manager {
	return &Manager{ConfigDir: configDir}
}

// Add queues a plugin for loading.
func (m *Manager) Add(p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins = append(m.plugins, p)
}

// LoadPlugins registers all queued plugins. A panicking or failing
// plugin is skipped; the rest still load.
func (m *Manager) LoadPlugins(reg Registry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.plugins {
		meta := p.Meta()

		for _, h := range reg.Hooks(HookBeforePluginLoad) {
			h(meta.Name)
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					pluginErrorCount.Add(1)
					log.Printf("panic in plugin %s Register: %v", meta.Name, r)
				}
			}()

			if err := p.Register(reg); err != nil {
				pluginErrorCount.Add(1)
				log.Printf("plugin %s failed to register: %v", meta.Name, err)
				return
			}
			reg.RegisterMeta(meta)

			if m.ConfigDir != "" {
				if err := reg.LoadPluginConfig(meta.Name, m.ConfigDir); err != nil {
					pluginErrorCount.Add(1)
					log.Printf("failed to load config for plugin %s: %v", meta.Name, err)
				}
			}

			pluginLoadCount.Add(1)
			for _, h := range reg.Hooks(HookAfterPluginLoad) {
				h(meta.Name)
			}
		}()
	}
}

// ReloadPlugins clears plugin registrations back to the core mark and
// loads all queued plugins again.
func (m *Manager) ReloadPlugins(reg Registry) {
	reg.ClearPlugins()
	m.LoadPlugins(reg)
}
