// Package viz renders predicted and recorded trajectories in the terminal.
package viz

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/r-mohan/quadnmpc/internal/trajectory"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

const (
	plotWidth  = 60
	plotHeight = 6
	// plotted series are resampled onto this many points
	plotSamples = 60
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Channel names one plotted slice of a series.
type Channel struct {
	Label string
	Start int
	Stop  int
}

// StateChannels returns the plot layout for a physical state series.
func StateChannels() []Channel {
	return []Channel{
		{Label: "position (m)", Start: 0, Stop: 3},
		{Label: "attitude (quat)", Start: 3, Stop: 7},
		{Label: "body velocity (m/s)", Start: 7, Stop: 10},
		{Label: "body angular velocity (rad/s)", Start: 10, Stop: 13},
	}
}

// InputChannels returns the plot layout for an input series.
func InputChannels() []Channel {
	return []Channel{
		{Label: "squared motor speeds", Start: 0, Stop: vectors.NumMotors},
	}
}

// RenderSeries plots the selected channels of a time series, one chart per
// channel group, with each component overlaid.
func RenderSeries(title string, t []float64, series vectors.VectorList, channels []Channel) string {
	if len(series) == 0 {
		return ""
	}

	plotted := series
	if len(series) >= 2 {
		if _, resampled, err := trajectory.Resample(t, series, plotSamples); err == nil {
			plotted = resampled
		}
	}

	cols := trajectory.Columns(plotted)
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for _, ch := range channels {
		if ch.Stop > len(cols) {
			continue
		}
		chart := asciigraph.PlotMany(cols[ch.Start:ch.Stop],
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(ch.Label),
		)
		b.WriteString(graphStyle.Render(chart))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderStats formats a metrics map as label/value lines.
func RenderStats(metrics map[string]float64, order []string) string {
	var b strings.Builder
	for _, name := range order {
		v, ok := metrics[name]
		if !ok {
			continue
		}
		b.WriteString(labelStyle.Render(name))
		b.WriteString(": ")
		b.WriteString(strconv.FormatFloat(v, 'g', 6, 64))
		b.WriteString("\n")
	}
	return b.String()
}
