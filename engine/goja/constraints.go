package goja

import (
	"math"

	"github.com/compozy/jsswitch/engine/settings"
)

var supportedFeatures = append([]settings.Feature{
	settings.FeatureMaxStackUsage,
	settings.FeatureDisableEval,
}, settings.InterpreterFeatures...)

type constraints struct {
	// maxCallStackSize is a frame count; zero keeps the goja default.
	maxCallStackSize int
	disableEval      bool
}

func toConstraints(s settings.Settings) constraints {
	c := constraints{disableEval: s.DisableEval}
	if s.MaxStackUsage > 0 {
		c.maxCallStackSize = int(min(s.MaxStackUsage, uint64(math.MaxInt)))
	}
	return c
}
