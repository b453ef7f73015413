package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/iliyamo/carbon-tracker/internal/emissions"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

func kg(v float64) string { return fmt.Sprintf("%.2f", v) }

// HistoryTable writes the entry history with the same columns as the web
// view and a cumulative total footer.
func HistoryTable(w io.Writer, username string, entries []model.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Emission history: %s", username)
	t.AppendHeader(table.Row{"Date", "Car km", "Bike km", "Bus km", "kWh", "Meat", "Veg", "Total kg"})

	var total float64
	for _, e := range entries {
		t.AppendRow(table.Row{e.Date, e.CarKm, e.BikeKm, e.BusKm, e.ElectricityKWh, e.MeatMeals, e.VegMeals, kg(e.Total)})
		total += e.Total
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Cumulative", kg(total)})
	t.SetColumnConfigs(rightAligned(2, 8))
	t.Render()
}

// BreakdownTable writes one activity's per-channel emissions.
func BreakdownTable(w io.Writer, a emissions.Activity, e emissions.Emissions) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Channel", "Quantity", "kg CO2e"})
	t.AppendRows([]table.Row{
		{"car", a.CarKm, kg(e.Car)},
		{"bike", a.BikeKm, kg(e.Bike)},
		{"bus", a.BusKm, kg(e.Bus)},
		{"electricity", a.ElectricityKWh, kg(e.Electricity)},
		{"food", fmt.Sprintf("%g meat / %g veg", a.MeatMeals, a.VegMeals), kg(e.Food)},
	})
	t.AppendFooter(table.Row{"", "Total", kg(e.Total)})
	t.SetColumnConfigs(rightAligned(2, 3))
	t.Render()
}

// FactorTable writes the emission factor table.
func FactorTable(w io.Writer, factors []emissions.Factor) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Activity", "Unit", "kg CO2e / unit"})
	for _, f := range factors {
		t.AppendRow(table.Row{f.Activity, f.Unit, f.KgCO2e})
	}
	t.Render()
}

func rightAligned(from, to int) []table.ColumnConfig {
	var cc []table.ColumnConfig
	for n := from; n <= to; n++ {
		cc = append(cc, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	return cc
}
