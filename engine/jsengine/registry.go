package jsengine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/settings"
)

// Constructor builds a ready Engine or returns an engine_load error.
type Constructor func(ctx context.Context, s settings.Settings, opts ...Option) (*Engine, error)

var registry = struct {
	sync.RWMutex
	constructors map[string]Constructor
}{constructors: make(map[string]Constructor)}

// Register makes an engine family available to New under a case-insensitive
// name. It panics on an empty name, a nil constructor or a duplicate.
func Register(name string, ctor Constructor) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		panic("jsengine: Register called with empty name")
	}
	if ctor == nil {
		panic("jsengine: Register constructor is nil for " + name)
	}
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.constructors[key]; dup {
		panic("jsengine: Register called twice for " + name)
	}
	registry.constructors[key] = ctor
}

// Names returns the registered engine names, sorted.
func Names() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.constructors))
	for name := range registry.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the engine registered under name.
func New(ctx context.Context, name string, s settings.Settings, opts ...Option) (*Engine, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, core.NewArgumentError(core.MsgDefaultEngineMissing)
	}
	registry.RLock()
	ctor, ok := registry.constructors[key]
	registry.RUnlock()
	if !ok {
		msg := fmt.Sprintf(core.MsgEngineFactoryNotFound, name)
		return nil, &core.Error{Kind: core.KindEngineLoad, Message: msg, Description: msg}
	}
	return ctor(ctx, s, opts...)
}
