package jsengine

import (
	"fmt"
	"runtime/debug"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/settings"
)

// ModuleVersion returns the version of the module at path linked into the
// running binary, or fallback when build info is unavailable.
func ModuleVersion(path, fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		if dep.Version != "" && dep.Version != "(devel)" {
			return dep.Version
		}
	}
	return fallback
}

// CheckSettings validates s and rejects every setting the engine cannot
// express. The error is always an engine_load *core.Error.
func CheckSettings(n *core.Normalizer, s settings.Settings, supported ...settings.Feature) error {
	if err := s.Validate(); err != nil {
		return n.WrapUnknownLoadError(err)
	}
	unsupported := settings.Unsupported(s, supported...)
	if len(unsupported) == 0 {
		return nil
	}
	msg := fmt.Sprintf(core.MsgSettingNotSupported, n.EngineName, settings.Join(unsupported))
	return n.NewLoadError(msg, fmt.Errorf("%w: %s", settings.ErrUnsupportedSetting, settings.Join(unsupported)))
}
