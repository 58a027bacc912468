package goja

import (
	"context"
	"errors"

	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	gj "github.com/dop251/goja"
)

const (
	// EngineName is the display name used in messages.
	EngineName = "Goja"
	// RegistryName is the name the engine registers under.
	RegistryName = "goja"

	modulePath      = "github.com/dop251/goja"
	fallbackVersion = "v0.0.0-20230806174421-c933cf95e127"
)

var (
	engineVersion  string
	undefinedValue gj.Value

	initializer = jsengine.NewInitializer(EngineName, initialize)
)

func initialize() error {
	u := gj.Undefined()
	if u == nil || !gj.IsUndefined(u) {
		return errors.New("goja does not expose an undefined value")
	}
	undefinedValue = u
	engineVersion = jsengine.ModuleVersion(modulePath, fallbackVersion)
	return nil
}

func init() {
	jsengine.Register(RegistryName, func(ctx context.Context, s settings.Settings, opts ...jsengine.Option) (*jsengine.Engine, error) {
		return New(ctx, s, WithEngineOptions(opts...))
	})
}
