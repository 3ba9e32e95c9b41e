package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripEmphasis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "nothing to strip", "nothing to strip"},
		{"bold", "**Finding**: cache was cold", "Finding: cache was cold"},
		{"underscore bold", "__note__ here", "note here"},
		{"inline code", "ran `index-logs` again", "ran index-logs again"},
		{"html tags", "fixed <b>login</b> flow", "fixed login flow"},
		{"entity", "R&amp;D <i>notes</i>", "R&D notes"},
		{"lone angle bracket", "latency < 3s", "latency < 3s"},
		{"mixed", "**deploy** <code>v2</code>", "deploy v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripEmphasis(tt.in))
		})
	}
}

func TestHasStrikethrough(t *testing.T) {
	assert.True(t, HasStrikethrough("~~waiting on review~~ → resolved"))
	assert.True(t, HasStrikethrough("<del>pending invoice</del>"))
	assert.True(t, HasStrikethrough("item <s>old</s> new"))
	assert.False(t, HasStrikethrough("waiting on review"))
	assert.False(t, HasStrikethrough("a ~ b ~ c"))
	assert.False(t, HasStrikethrough("<b>bold</b> only"))
}

func TestStripBold(t *testing.T) {
	assert.Equal(t, "Finding `x`", StripBold("**Finding** `x`"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "応募状...", Truncate("応募状況の確認", 3))
}
