// Package sampleplugin is a minimal example of a compile-time engine
// plugin. It registers a custom block type, a time event action, a hook
// and an admin command.
package sampleplugin

import (
	"fmt"
	"log"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/plugin"
)

// Config is the sample plugin configuration, loaded from sampleplugin.yaml.
type Config struct {
	Greeting string `yaml:"greeting"`
	Value    int    `yaml:"value"`
}

// SamplePlugin demonstrates the plugin registration surface.
type SamplePlugin struct{}

// New returns a fresh plugin instance for manager registration.
func New() *SamplePlugin { return &SamplePlugin{} }

// Meta describes the plugin.
func (p *SamplePlugin) Meta() plugin.Meta {
	return plugin.Meta{
		Name:        "sampleplugin",
		Version:     "1.0.0",
		Author:      "annelo",
		Description: "Example plugin: glowstone block, midnight chime and an info command",
	}
}

// Register wires the plugin into the engine registry.
func (p *SamplePlugin) Register(reg plugin.Registry) error {
	// A custom solid block type outside the core range.
	reg.RegisterBlockTraits(block.Type(100), block.Traits{
		Name:   "glowstone",
		Solid:  true,
		Opaque: true,
	})

	// A named action the world clock can fire at a configured phase.
	reg.RegisterTimeAction("Midnight", func() {
		log.Printf("[SamplePlugin] midnight chime")
	})

	// Log every freshly generated chunk.
	reg.RegisterHook(plugin.HookAfterChunkGenerate, func(args ...interface{}) {
		if len(args) == 1 {
			log.Printf("[SamplePlugin] chunk generated: %v", args[0])
		}
	})

	reg.RegisterPluginConfig("sampleplugin", &Config{Greeting: "hello"})

	reg.RegisterCommand("sampleinfo", "Show sample plugin info", func(args []string) (string, error) {
		cfg, ok := reg.PluginConfig("sampleplugin").(*Config)
		if !ok {
			return "", fmt.Errorf("sampleplugin config is not loaded")
		}
		return fmt.Sprintf("Greeting: %s, Value: %d\n", cfg.Greeting, cfg.Value), nil
	})
	return nil
}
