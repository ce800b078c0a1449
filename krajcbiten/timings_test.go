package krajcbiten

import (
	"strings"
	"testing"
	"time"

	"github.com/oliverbestmann/krajc"
	"github.com/stretchr/testify/require"
)

func TestFormatTimings(t *testing.T) {
	rt := krajc.NewRuntime(krajc.Options{})
	rt.InsertResource(krajc.NewTimingStats())

	require.NoError(t, rt.AddSystems(krajc.Update,
		krajc.System(func() { time.Sleep(2 * time.Millisecond) }).Named("slow"),
		krajc.System(func() {}).Named("fast"),
	))

	require.NoError(t, rt.Startup())
	require.NoError(t, rt.Frame(time.Millisecond))

	stats, _ := krajc.ResourceOf[krajc.TimingStats](rt)
	lines := FormatTimings(stats, time.Millisecond)

	require.True(t, strings.HasPrefix(lines[0], "EngineLoad"))
	require.Contains(t, lines[len(lines)-1], "slow")

	for _, line := range lines {
		require.False(t, strings.HasPrefix(line, "fast"))
	}
}
