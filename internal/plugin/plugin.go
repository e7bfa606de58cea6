// Package plugin provides a registry for compile-time engine extensions:
// game systems, block traits, time event actions and hooks.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/annelo/go-voxel-engine/internal/block"
	"github.com/annelo/go-voxel-engine/internal/gameloop"
	"github.com/annelo/go-voxel-engine/internal/timeevents"
)

// Meta holds metadata for a plugin.
type Meta struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Author      string `json:"author" yaml:"author"`
	Description string `json:"description" yaml:"description"`
}

// HookType defines a named event hook.
type HookType string

// Common hook types.
const (
	HookBeforeChunkGenerate HookType = "BeforeChunkGenerate"
	HookAfterChunkGenerate  HookType = "AfterChunkGenerate"
	HookBeforeChunkSave     HookType = "BeforeChunkSave"
	HookAfterChunkSave      HookType = "AfterChunkSave"
	HookBeforePluginLoad    HookType = "BeforePluginLoad"
	HookAfterPluginLoad     HookType = "AfterPluginLoad"
)

// HookFunc is the signature for hook handlers. args are event-specific.
type HookFunc func(args ...interface{})

// BlockRegistration holds a single block traits registration.
type BlockRegistration struct {
	Type   block.Type
	Traits block.Traits
}

// TimeActionRegistration binds a named time event action to a function.
type TimeActionRegistration struct {
	Name   string
	Action timeevents.Action
}

// CommandFunc is the signature for admin CLI command handlers.
type CommandFunc func(args []string) (string, error)

// CommandRegistration holds a single CLI command registration.
type CommandRegistration struct {
	Name        string
	Description string
	Handler     CommandFunc
}

// Registry allows plugins to extend the engine.
type Registry interface {
	// RegisterBlockTraits registers traits for a block type.
	RegisterBlockTraits(t block.Type, traits block.Traits)
	// RegisterGameSystem registers a game loop system to be ticked every tick.
	RegisterGameSystem(sys gameloop.System)
	// RegisterTimeAction registers a named action for time events.
	RegisterTimeAction(name string, action timeevents.Action)
	// RegisterMeta registers metadata for a plugin.
	RegisterMeta(meta Meta)
	// RegisterHook registers a hook handler for a given hook type.
	RegisterHook(hook HookType, fn HookFunc)
	// RegisterCommand registers an admin CLI command.
	RegisterCommand(name, description string, handler CommandFunc)

	// BlockRegistrations returns all registered block traits.
	BlockRegistrations() []BlockRegistration
	// GameSystems returns all registered game loop systems.
	GameSystems() []gameloop.System
	// TimeActions returns all registered time actions.
	TimeActions() []TimeActionRegistration
	// Metas returns all registered plugin metadata.
	Metas() []Meta
	// Hooks returns all handlers registered for a hook type.
	Hooks(hook HookType) []HookFunc
	// Commands returns all registered admin CLI commands.
	Commands() []CommandRegistration

	// MarkCore marks the boundary between core and plugin registrations.
	MarkCore()
	// ClearPlugins removes all registrations added after MarkCore.
	ClearPlugins()

	// RegisterPluginConfig registers a sample config struct for a plugin.
	RegisterPluginConfig(name string, sample interface{})
	// LoadPluginConfig loads a plugin's config YAML from the given directory.
	LoadPluginConfig(name, dir string) error
	// PluginConfig returns the loaded config object for a plugin.
	PluginConfig(name string) interface{}
}

// DefaultRegistry is the default implementation of Registry.
type DefaultRegistry struct {
	blocks      []BlockRegistration
	gameSystems []gameloop.System
	timeActions []TimeActionRegistration
	metas       []Meta
	commands    []CommandRegistration
	hooks       map[HookType][]HookFunc

	configSamples map[string]interface{}
	configs       map[string]interface{}

	mu sync.RWMutex

	coreBlockCount      int
	coreSystemCount     int
	coreTimeActionCount int
	coreMetaCount       int
	coreCommandCount    int
	coreHooks           map[HookType][]HookFunc
}

// NewDefaultRegistry returns a new DefaultRegistry instance.
func NewDefaultRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		hooks:         make(map[HookType][]HookFunc),
		configSamples: make(map[string]interface{}),
		configs:       make(map[string]interface{}),
	}
}

// RegisterBlockTraits records traits for a block type and installs them
// into the block registry.
func (r *DefaultRegistry) RegisterBlockTraits(t block.Type, traits block.Traits) {
	r.mu.Lock()
	defer r.mu.Unlock()
	block.Register(t, traits)
	r.blocks = append(r.blocks, BlockRegistration{Type: t, Traits: traits})
}

// RegisterGameSystem appends a gameloop.System to the registry.
func (r *DefaultRegistry) RegisterGameSystem(sys gameloop.System) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gameSystems = append(r.gameSystems, sys)
}

// RegisterTimeAction appends a named time event action.
func (r *DefaultRegistry) RegisterTimeAction(name string, action timeevents.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeActions = append(r.timeActions, TimeActionRegistration{Name: name, Action: action})
}

// RegisterMeta appends plugin metadata to the registry.
func (r *DefaultRegistry) RegisterMeta(meta Meta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas = append(r.metas, meta)
}

// RegisterHook appends a hook handler for a given hook type.
func (r *DefaultRegistry) RegisterHook(hook HookType, fn HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[hook] = append(r.hooks[hook], fn)
}

// RegisterCommand appends an admin CLI command registration.
func (r *DefaultRegistry) RegisterCommand(name, description string, handler CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandRegistration{Name: name, Description: description, Handler: handler})
}

// BlockRegistrations returns all registered block traits.
func (r *DefaultRegistry) BlockRegistrations() []BlockRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.blocks
}

// GameSystems returns all registered game systems.
func (r *DefaultRegistry) GameSystems() []gameloop.System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameSystems
}

// TimeActions returns all registered time actions.
func (r *DefaultRegistry) TimeActions() []TimeActionRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.timeActions
}

// Metas returns all registered plugin metadata.
func (r *DefaultRegistry) Metas() []Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metas
}

// Commands returns all registered admin CLI commands.
func (r *DefaultRegistry) Commands() []CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands
}

// Hooks returns all registered hook handlers for the given hook type.
func (r *DefaultRegistry) Hooks(hook HookType) []HookFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hooks[hook]
}

// FireHook invokes all handlers registered for the hook type.
func (r *DefaultRegistry) FireHook(hook HookType, args ...interface{}) {
	for _, fn := range r.Hooks(hook) {
		fn(args...)
	}
}

// MarkCore marks the current registry state as the core, so plugin
// additions can be cleared later.
func (r *DefaultRegistry) MarkCore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coreBlockCount = len(r.blocks)
	r.coreSystemCount = len(r.gameSystems)
	r.coreTimeActionCount = len(r.timeActions)
	r.coreMetaCount = len(r.metas)
	r.coreCommandCount = len(r.commands)
	r.coreHooks = make(map[HookType][]HookFunc, len(r.hooks))
	for k, v := range r.hooks {
		r.coreHooks[k] = append([]HookFunc{}, v...)
	}
}

// ClearPlugins removes all registrations added after the last core mark.
func (r *DefaultRegistry) ClearPlugins() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.coreBlockCount <= len(r.blocks) {
		r.blocks = r.blocks[:r.coreBlockCount]
	}
	if r.coreSystemCount <= len(r.gameSystems) {
		r.gameSystems = r.gameSystems[:r.coreSystemCount]
	}
	if r.coreTimeActionCount <= len(r.timeActions) {
		r.timeActions = r.timeActions[:r.coreTimeActionCount]
	}
	if r.coreMetaCount <= len(r.metas) {
		r.metas = r.metas[:r.coreMetaCount]
	}
	if r.coreCommandCount <= len(r.commands) {
		r.commands = r.commands[:r.coreCommandCount]
	}
	r.hooks = make(map[HookType][]HookFunc, len(r.coreHooks))
	for k, v := range r.coreHooks {
		r.hooks[k] = append([]HookFunc{}, v...)
	}
}

// RegisterPluginConfig registers a sample config struct for a plugin.
func (r *DefaultRegistry) RegisterPluginConfig(name string, sample interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configSamples[name] = sample
	r.configs[name] = sample
}

// LoadPluginConfig loads a plugin's YAML config from dir/name.yaml.
func (r *DefaultRegistry) LoadPluginConfig(name, dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sample, ok := r.configSamples[name]
	if !ok {
		return nil
	}
	t := reflect.TypeOf(sample)
	if t.Kind() != reflect.Ptr {
		return fmt.Errorf("config sample for %s must be a pointer to struct", name)
	}
	newPtr := reflect.New(t.Elem()).Interface()
	path := filepath.Join(dir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, newPtr); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	r.configs[name] = newPtr
	return nil
}

// PluginConfig returns the loaded config object for a plugin, or the
// default sample.
func (r *DefaultRegistry) PluginConfig(name string) interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configs[name]
}
