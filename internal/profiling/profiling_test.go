package profiling

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	for i := 0; i < 3; i++ {
		stop := Track("cull.AddPoly")
		time.Sleep(time.Millisecond)
		stop()
	}
	Track("cull.Harvest")()

	require.Equal(t, 3, Calls("cull.AddPoly"))
	require.Equal(t, 1, Calls("cull.Harvest"))
	require.GreaterOrEqual(t, Snapshot()["cull.AddPoly"], 3*time.Millisecond)

	top := TopN(1)
	require.True(t, strings.HasPrefix(top, "cull.AddPoly:"), top)
	require.True(t, strings.HasSuffix(top, "(3)"), top)

	ResetFrame()
	require.Empty(t, Snapshot())
	require.Equal(t, "", TopN(5))
}

func TestFormatMs(t *testing.T) {
	require.Equal(t, "4ms", formatMs(4))
	require.Equal(t, "4.2ms", formatMs(4.2))
}
