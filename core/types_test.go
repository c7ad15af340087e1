package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHexColor(t *testing.T) {
	c, ok := ParseHexColor("#ff0000")
	assert.True(t, ok)
	assert.Equal(t, ColorRed, c)

	c, ok = ParseHexColor("00000000")
	assert.True(t, ok)
	assert.Equal(t, ColorTransparent, c)

	c, ok = ParseHexColor("#3366CC80")
	assert.True(t, ok)
	assert.InDelta(t, 0x33/255.0, c.R, 1e-6)
	assert.InDelta(t, 0xcc/255.0, c.B, 1e-6)
	assert.InDelta(t, 0x80/255.0, c.A, 1e-6)

	for _, bad := range []string{"", "#fff", "#12345", "#gg0000", "#ff0000ff00"} {
		_, ok := ParseHexColor(bad)
		assert.False(t, ok, bad)
	}
}
