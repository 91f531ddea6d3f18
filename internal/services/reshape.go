package services

import (
	"slices"

	"classicmodels-dashboard/internal/charts"
	"classicmodels-dashboard/internal/models"
)

// filterWindow keeps only points whose date lies strictly inside the open
// interval (w.Start, w.End). Input order is preserved, so a point's position
// in the returned slice is a stable row index. A window with Start >= End
// can never contain a date and yields an empty slice, not an error.
func filterWindow(points []models.TimeSeriesPoint, w models.TimeWindow) []models.TimeSeriesPoint {
	filtered := make([]models.TimeSeriesPoint, 0, len(points))
	for _, p := range points {
		if w.Contains(p.Date) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// groupByCountry splits filtered rows into one series group per country,
// ordered by each country's first appearance. Point IDs index into the
// filtered slice.
func groupByCountry(points []models.TimeSeriesPoint) []charts.SeriesGroup {
	order := make([]string, 0)
	byCountry := make(map[string]*charts.SeriesGroup)

	for i, p := range points {
		g, ok := byCountry[p.Country]
		if !ok {
			g = &charts.SeriesGroup{Name: p.Country}
			byCountry[p.Country] = g
			order = append(order, p.Country)
		}
		g.Points = append(g.Points, charts.Point{
			ID:     i,
			Date:   p.Date,
			Amount: p.SalesAmount,
		})
	}

	groups := make([]charts.SeriesGroup, 0, len(order))
	for _, country := range order {
		groups = append(groups, *byCountry[country])
	}
	return groups
}

type periodKey struct {
	year int
	week int
}

// collapsePeriods folds filtered rows down to one point per (year, week):
// sales amounts are summed across countries and the earliest date in the
// period becomes the x label. The single resulting group is ordered by that
// date. An empty input collapses to one group with no points.
func collapsePeriods(points []models.TimeSeriesPoint) []charts.SeriesGroup {
	type bucket struct {
		amount float64
		date   models.TimeSeriesPoint
	}

	buckets := make(map[periodKey]*bucket)
	for _, p := range points {
		k := periodKey{year: p.Year, week: p.Week}
		b, ok := buckets[k]
		if !ok {
			buckets[k] = &bucket{amount: p.SalesAmount, date: p}
			continue
		}
		b.amount += p.SalesAmount
		if p.Date.Before(b.date.Date) {
			b.date = p
		}
	}

	collapsed := make([]charts.Point, 0, len(buckets))
	for _, b := range buckets {
		collapsed = append(collapsed, charts.Point{
			Date:   b.date.Date,
			Amount: b.amount,
		})
	}
	slices.SortFunc(collapsed, func(a, b charts.Point) int {
		return a.Date.Compare(b.Date)
	})
	for i := range collapsed {
		collapsed[i].ID = i
	}

	return []charts.SeriesGroup{{Points: collapsed}}
}
