package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrobeLatchesLiveAButton(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	c.Strobe(true)

	require.Equal(t, uint8(1), c.Read())
	require.Equal(t, uint8(1), c.Read(), "A stays live while strobing regardless of read count")
}

func TestReadSequenceMatchesEndToEndScenario(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	c.Strobe(true)
	c.Strobe(false)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		require.Equal(t, w, c.Read(), "bit %d", i)
	}
	// Further reads return the open-bus-approximating 1 tail.
	require.Equal(t, uint8(1), c.Read())
	require.Equal(t, uint8(1), c.Read())
}

func TestSetButtonWhileStrobingRelatches(t *testing.T) {
	c := New()
	c.Strobe(true)
	c.SetButton(ButtonA, true)
	require.Equal(t, uint8(1), c.Read())
	c.SetButton(ButtonA, false)
	require.Equal(t, uint8(0), c.Read())
}

func TestReleasedControllerReadsAllZeroThenOnes(t *testing.T) {
	c := New()
	c.Strobe(true)
	c.Strobe(false)
	for i := 0; i < 8; i++ {
		require.Equal(t, uint8(0), c.Read())
	}
	require.Equal(t, uint8(1), c.Read())
}
