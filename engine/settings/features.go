package settings

// Feature names one non-default setting.
type Feature string

const (
	FeatureMaxNewSpaceSize                 Feature = "MaxNewSpaceSize"
	FeatureMaxOldSpaceSize                 Feature = "MaxOldSpaceSize"
	FeatureMaxHeapSize                     Feature = "MaxHeapSize"
	FeatureMemoryLimit                     Feature = "MemoryLimit"
	FeatureMaxStackUsage                   Feature = "MaxStackUsage"
	FeatureHeapSizeSampleInterval          Feature = "HeapSizeSampleInterval"
	FeatureEnableDebugging                 Feature = "EnableDebugging"
	FeatureEnableRemoteDebugging           Feature = "EnableRemoteDebugging"
	FeatureAwaitDebuggerAndPauseOnStart    Feature = "AwaitDebuggerAndPauseOnStart"
	FeatureDisableGlobalMembers            Feature = "DisableGlobalMembers"
	FeatureDisableEval                     Feature = "DisableEval"
	FeatureDisableNativeCodeGeneration     Feature = "DisableNativeCodeGeneration"
	FeatureDisableExecutablePageAllocation Feature = "DisableExecutablePageAllocation"
	FeatureDisableBackgroundWork           Feature = "DisableBackgroundWork"
	FeatureDisableFatalOnOOM               Feature = "DisableFatalOnOOM"
	FeatureEnableExperimentalFeatures      Feature = "EnableExperimentalFeatures"
	FeatureDebugPort                       Feature = "DebugPort"
)

// InterpreterFeatures are satisfied by any engine that never emits machine code.
var InterpreterFeatures = []Feature{
	FeatureDisableNativeCodeGeneration,
	FeatureDisableExecutablePageAllocation,
	FeatureDisableBackgroundWork,
}

// Requested lists the features s sets to a non-default value, in field order.
func Requested(s Settings) []Feature {
	var out []Feature
	add := func(set bool, f Feature) {
		if set {
			out = append(out, f)
		}
	}
	add(s.MaxNewSpaceSize != 0, FeatureMaxNewSpaceSize)
	add(s.MaxOldSpaceSize != 0, FeatureMaxOldSpaceSize)
	add(s.MaxHeapSize != 0, FeatureMaxHeapSize)
	add(s.HasMemoryLimit(), FeatureMemoryLimit)
	add(s.MaxStackUsage != 0, FeatureMaxStackUsage)
	add(s.HeapSizeSampleInterval != 0, FeatureHeapSizeSampleInterval)
	add(s.EnableDebugging, FeatureEnableDebugging)
	add(s.EnableRemoteDebugging, FeatureEnableRemoteDebugging)
	add(s.AwaitDebuggerAndPauseOnStart, FeatureAwaitDebuggerAndPauseOnStart)
	add(s.DisableGlobalMembers, FeatureDisableGlobalMembers)
	add(s.DisableEval, FeatureDisableEval)
	add(s.DisableNativeCodeGeneration, FeatureDisableNativeCodeGeneration)
	add(s.DisableExecutablePageAllocation, FeatureDisableExecutablePageAllocation)
	add(s.DisableBackgroundWork, FeatureDisableBackgroundWork)
	add(s.DisableFatalOnOOM, FeatureDisableFatalOnOOM)
	add(s.EnableExperimentalFeatures, FeatureEnableExperimentalFeatures)
	add(s.DebugPort != 0 && s.DebugPort != DefaultDebugPort, FeatureDebugPort)
	return out
}

// Unsupported lists the requested features that are not in supported.
func Unsupported(s Settings, supported ...Feature) []Feature {
	allowed := make(map[Feature]struct{}, len(supported))
	for _, f := range supported {
		allowed[f] = struct{}{}
	}
	var out []Feature
	for _, f := range Requested(s) {
		if _, ok := allowed[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// Join renders features as a comma separated list for error messages.
func Join(features []Feature) string {
	var b []byte
	for i, f := range features {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, f...)
	}
	return string(b)
}
