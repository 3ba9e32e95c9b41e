package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	got := highlight("Deploy done", "deploy")
	assert.Contains(t, got, "Deploy")
	assert.Contains(t, got, " done")

	assert.Equal(t, "plain", highlight("plain", ""))
	assert.Equal(t, "no hit here", highlight("no hit here", "zzz"))
}

func TestHighlight_LengthChangingFold(t *testing.T) {
	kelvin := "\u212a"

	// the query shrinks when lowered
	assert.NotPanics(t, func() {
		assert.Equal(t, "ak", highlight("ak", kelvin))
	})
	// the text shrinks when lowered
	assert.NotPanics(t, func() {
		assert.Equal(t, kelvin+"elvin", highlight(kelvin+"elvin", "k"))
	})
}
