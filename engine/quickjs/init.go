package quickjs

import (
	"context"

	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
)

const (
	EngineName   = "QuickJS"
	RegistryName = "quickjs"

	// MemoryLimitMessage replaces QuickJS out-of-memory errors so they are
	// reported as recoverable runtime errors.
	MemoryLimitMessage = "QuickJS runtime has exceeded its memory limit"

	modulePath      = "github.com/buke/quickjs-go"
	fallbackVersion = "v0.5.6"
	nativeLibrary   = "libquickjs.a"
)

// loadRemedies tells users how to obtain a missing native component.
var loadRemedies = map[string]string{
	nativeLibrary: "the QuickJS cgo backend (build with -tags quickjs)",
}

var (
	engineVersion string

	initializer = jsengine.NewInitializer(EngineName, initialize)
)

func initialize() error {
	if err := probeBackend(); err != nil {
		return err
	}
	engineVersion = jsengine.ModuleVersion(modulePath, fallbackVersion)
	return nil
}

func init() {
	jsengine.Register(RegistryName, func(ctx context.Context, s settings.Settings, opts ...jsengine.Option) (*jsengine.Engine, error) {
		return New(ctx, s, WithEngineOptions(opts...))
	})
}
