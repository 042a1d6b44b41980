package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestCrumbsTrail(t *testing.T) {
	c := NewCrumbs(DefaultTheme())

	assert.Empty(t, c.trail("main", nil))

	out := c.trail("main", []string{"console", "help"})
	assert.True(t, strings.HasPrefix(out, "[fuchsia::b]@main"), out)
	assert.Less(t, strings.Index(out, "console"), strings.Index(out, "help"))
	assert.Contains(t, out, "[black:orange:b] help ")
	assert.Contains(t, out, "[black:aqua:] console ")
}

func TestTag(t *testing.T) {
	assert.Equal(t, "orange", Tag(tcell.ColorOrange))
	assert.Equal(t, "#123456", Tag(tcell.NewHexColor(0x123456)))
}
