package otto

import (
	"math"

	"github.com/compozy/jsswitch/engine/settings"
)

var supportedFeatures = append([]settings.Feature{
	settings.FeatureMaxStackUsage,
	settings.FeatureDisableEval,
}, settings.InterpreterFeatures...)

type constraints struct {
	stackDepthLimit int
	disableEval     bool
}

func toConstraints(s settings.Settings) constraints {
	c := constraints{disableEval: s.DisableEval}
	if s.MaxStackUsage > 0 {
		c.stackDepthLimit = int(min(s.MaxStackUsage, uint64(math.MaxInt)))
	}
	return c
}
