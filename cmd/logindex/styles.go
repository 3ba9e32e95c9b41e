package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pbaille/logindex/internal/domain"
)

var (
	coral    = lipgloss.Color("#FF6B6B")
	sand     = lipgloss.Color("#F7DC6F")
	salmon   = lipgloss.Color("#FFA07A")
	sky      = lipgloss.Color("#87CEEB")
	mint     = lipgloss.Color("#A8E6CF")
	muted    = lipgloss.Color("#6B7280")
	offWhite = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(offWhite).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	okStyle = lipgloss.NewStyle().
		Foreground(mint)

	matchStyle = lipgloss.NewStyle().
			Foreground(sand).
			Bold(true)

	structuralStyle = lipgloss.NewStyle().
			Foreground(coral).
			Italic(true)
)

// typeStyles colors each divergence type label
var typeStyles = map[domain.DivergenceType]lipgloss.Style{
	domain.DivergenceContradiction: lipgloss.NewStyle().Foreground(coral).Bold(true),
	domain.DivergenceBlindSpot:     lipgloss.NewStyle().Foreground(sand).Bold(true),
	domain.DivergenceImbalance:     lipgloss.NewStyle().Foreground(salmon).Bold(true),
	domain.DivergenceCalibration:   lipgloss.NewStyle().Foreground(sky).Bold(true),
}

func typeLabel(t domain.DivergenceType) string {
	if s, ok := typeStyles[t]; ok {
		return s.Render(string(t))
	}
	return string(t)
}

func natureLabel(n domain.Nature) string {
	if n == domain.NatureStructural {
		return structuralStyle.Render(string(n))
	}
	return okStyle.Render(string(n))
}
