package quickjs

import "github.com/compozy/jsswitch/engine/settings"

// QuickJS throws on allocation failure instead of aborting, so
// DisableFatalOnOOM always holds.
var supportedFeatures = append([]settings.Feature{
	settings.FeatureMaxHeapSize,
	settings.FeatureMemoryLimit,
	settings.FeatureMaxStackUsage,
	settings.FeatureDisableEval,
	settings.FeatureDisableFatalOnOOM,
}, settings.InterpreterFeatures...)

type constraints struct {
	// memoryLimit in bytes; zero keeps QuickJS unlimited.
	memoryLimit  uint64
	maxStackSize uint64
	disableEval  bool
}

func toConstraints(s settings.Settings) constraints {
	c := constraints{
		maxStackSize: s.MaxStackUsage,
		disableEval:  s.DisableEval,
	}
	switch {
	case s.MaxHeapSize > 0:
		c.memoryLimit = s.MaxHeapSize
	case s.HasMemoryLimit():
		c.memoryLimit = s.MemoryLimit
	}
	return c
}
