package otto

import (
	"context"
	"errors"

	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	ot "github.com/robertkrimen/otto"
)

const (
	EngineName   = "Otto"
	RegistryName = "otto"

	modulePath      = "github.com/robertkrimen/otto"
	fallbackVersion = "v0.5.1"
)

var (
	engineVersion  string
	undefinedValue ot.Value

	initializer = jsengine.NewInitializer(EngineName, initialize)
)

func initialize() error {
	u := ot.UndefinedValue()
	if !u.IsUndefined() {
		return errors.New("otto does not expose an undefined value")
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
