// Package report renders ledger data for people: an HTML line chart for the
// browser and plain tables for the terminal.
package report

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/iliyamo/carbon-tracker/internal/model"
)

const chartHeight = "420px"

// DailyChart builds a line chart of total emissions per date.  An empty
// series still renders, with a "No entries yet" subtitle.
func DailyChart(username string, days []model.DailyTotal) *charts.Line {
	subtitle := username
	if len(days) == 0 {
		subtitle = "No entries yet"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Carbon footprint",
			Width:     "100%",
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Daily emissions (kg CO2e)", Subtitle: subtitle, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kg CO2e"}),
		charts.WithGridOpts(opts.Grid{Top: "20%", Bottom: "15%", Left: "5%", Right: "5%", ContainLabel: opts.Bool(true)}),
	)

	labels := make([]string, len(days))
	data := make([]opts.LineData, len(days))
	for i, d := range days {
		labels[i] = d.Date
		data[i] = opts.LineData{Value: round2(d.Total)}
	}
	line.SetXAxis(labels).AddSeries("total", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

// RenderDailyChart writes the chart as a standalone HTML page.
func RenderDailyChart(w io.Writer, username string, days []model.DailyTotal) error {
	return DailyChart(username, days).Render(w)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
