package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("Should prefer values injected at link time", func(t *testing.T) {
		saved := Version
		Version = "v1.2.3"
		t.Cleanup(func() { Version = saved })
		info := Get()
		assert.Equal(t, "v1.2.3", info.Version)
		assert.Equal(t, runtime.Version(), info.GoVersion)
	})
	t.Run("Should render a one-line summary", func(t *testing.T) {
		info := Info{Version: "v1", CommitHash: "abc", BuildDate: "today", GoVersion: "go1.25"}
		assert.Equal(t, "v1 (commit abc, built today, go1.25)", info.String())
	})
}
