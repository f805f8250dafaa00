package chantime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chantime"
)

func TestDefaultClockAdvancesWithWallTime(t *testing.T) {
	clock := chantime.NewDefaultClock()
	before := clock.Now()
	time.Sleep(time.Millisecond)
	after := clock.Now()
	require.True(t, after.After(before))
}

func TestTestClockIsFixedUntilAdvanced(t *testing.T) {
	base := time.Unix(1000, 0)
	clock := chantime.NewTestClock(base)

	require.Equal(t, base, clock.Now())
	require.Equal(t, base, clock.Now())

	clock.Advance(5 * time.Second)
	require.Equal(t, base.Add(5*time.Second), clock.Now())

	other := time.Unix(2000, 0)
	clock.SetTime(other)
	require.Equal(t, other, clock.Now())
}
