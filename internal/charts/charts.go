// Package charts builds plotly-compatible figure specifications. Builders
// are pure: the same input always yields the same spec, and nothing here
// touches the store or the network.
package charts

import (
	"time"

	"classicmodels-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// ChartSpec mirrors the figure object consumed by the rendering surface:
// a list of series plus layout metadata.
type ChartSpec struct {
	Data   []Series `json:"data"`
	Layout Layout   `json:"layout"`
}

type Series struct {
	Type        string `json:"type"`
	X           []any  `json:"x"`
	Y           []any  `json:"y"`
	IDs         []int  `json:"ids,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Name        string `json:"name,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

type Layout struct {
	Title   string `json:"title"`
	YAxis   *Axis  `json:"yaxis,omitempty"`
	BarMode string `json:"barmode,omitempty"`
}

type Axis struct {
	AutoMargin bool `json:"automargin"`
}

// Point is one reshaped timeline observation. ID is a stable index into the
// filtered row set so point-level interaction stays possible downstream.
type Point struct {
	ID     int
	Date   time.Time
	Amount float64
}

// SeriesGroup is the reshaper's output unit: a named run of points. Name is
// a country when splitting, empty for the collapsed aggregate.
type SeriesGroup struct {
	Name   string
	Points []Point
}

// PointCount returns the total number of data points across all series.
func (c ChartSpec) PointCount() int {
	n := 0
	for _, s := range c.Data {
		n += len(s.X)
	}
	return n
}

// BuildTimelineChart maps grouped timeline rows to a markers-mode scatter
// chart: one series per group. Series names are only attached when splitting
// by country; the collapsed aggregate renders as a single unnamed series.
func BuildTimelineChart(groups []SeriesGroup, splitByCountry bool) ChartSpec {
	data := make([]Series, 0, len(groups))
	for _, g := range groups {
		s := Series{
			Type: "scatter",
			Mode: "markers",
			X:    make([]any, 0, len(g.Points)),
			Y:    make([]any, 0, len(g.Points)),
			IDs:  make([]int, 0, len(g.Points)),
		}
		if splitByCountry {
			s.Name = g.Name
		}
		for _, p := range g.Points {
			s.X = append(s.X, p.Date.Format(dateLayout))
			s.Y = append(s.Y, p.Amount)
			s.IDs = append(s.IDs, p.ID)
		}
		data = append(data, s)
	}

	return ChartSpec{
		Data:   data,
		Layout: Layout{Title: "Sales Over Time"},
	}
}

// BuildProductsChart maps ranked product rows to a horizontal bar chart.
// Unsplit, every product is one bar in a single series. Split, each product
// becomes its own series with one bar per country, stacked per country row.
func BuildProductsChart(rows []models.ProductSales, splitByCountry bool) ChartSpec {
	layout := Layout{
		Title:   "Most Profitable Products",
		YAxis:   &Axis{AutoMargin: true},
		BarMode: "stack",
	}

	if !splitByCountry {
		s := Series{
			Type:        "bar",
			Orientation: "h",
			X:           make([]any, 0, len(rows)),
			Y:           make([]any, 0, len(rows)),
			IDs:         make([]int, 0, len(rows)),
		}
		for i, r := range rows {
			s.X = append(s.X, r.SalesAmount)
			s.Y = append(s.Y, r.ProductName)
			s.IDs = append(s.IDs, i)
		}
		return ChartSpec{Data: []Series{s}, Layout: layout}
	}

	// One series per product, ordered by first appearance in the row set.
	order := make([]string, 0)
	byProduct := make(map[string]*Series)
	for i, r := range rows {
		s, ok := byProduct[r.ProductName]
		if !ok {
			s = &Series{
				Type:        "bar",
				Orientation: "h",
				Name:        r.ProductName,
			}
			byProduct[r.ProductName] = s
			order = append(order, r.ProductName)
		}
		s.X = append(s.X, r.SalesAmount)
		s.Y = append(s.Y, r.Country)
		s.IDs = append(s.IDs, i)
	}

	data := make([]Series, 0, len(order))
	for _, name := range order {
		data = append(data, *byProduct[name])
	}
	return ChartSpec{Data: data, Layout: layout}
}
