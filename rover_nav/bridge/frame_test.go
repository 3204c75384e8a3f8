package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"line-rover/rover_nav"
)

func TestParseFrame(t *testing.T) {
	f, ok, err := parseFrame("S,120,880,95,37\r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Frame{
		Sample:   rover_nav.SensorSample{Left: 120, Middle: 880, Right: 95},
		Distance: 37,
	}, f)
}

func TestParseFrameTimeout(t *testing.T) {
	for _, raw := range []string{"S,1,2,3,-1", "S,1,2,3,200", "S,1,2,3,450"} {
		f, ok, err := parseFrame(raw)
		require.NoError(t, err, raw)
		require.True(t, ok, raw)
		assert.Equal(t, rover_nav.OutOfRange, f.Distance, raw)
	}
}

func TestParseFrameIgnored(t *testing.T) {
	for _, raw := range []string{"", "   ", "# bridge v2 ready", "V,2.1", "A,ok"} {
		_, ok, err := parseFrame(raw)
		assert.NoError(t, err, raw)
		assert.False(t, ok, raw)
	}
}

func TestParseFrameErrors(t *testing.T) {
	for _, raw := range []string{"S,1,2,3", "S,1,2,3,4,5", "S,a,2,3,4", "S,1,2,3,x", "S,1,2000,3,4", "S,-5,2,3,4"} {
		_, ok, err := parseFrame(raw)
		assert.ErrorIs(t, err, ErrBadFrame, raw)
		assert.False(t, ok, raw)
	}
}

func TestWheelCommand(t *testing.T) {
	assert.Equal(t, "W,L,F,150\n", wheelCommand(rover_nav.WheelLeft, true, 150))
	assert.Equal(t, "W,R,B,0\n", wheelCommand(rover_nav.WheelRight, false, 0))
}
