package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"classicmodels-dashboard/internal/models"
)

// Memory serves the SalesStore contract from a fact slice with the same
// semantics as the SQL statements: ISO week bucketing, strict open window,
// descending totals with a product-name tie-break, per-country ranks
// starting at 1. It backs tests and demo runs without a database.
type Memory struct {
	facts []models.SalesFact
}

func NewMemory(facts []models.SalesFact) *Memory {
	return &Memory{facts: facts}
}

func (m *Memory) TimeRange(_ context.Context) (time.Time, time.Time, error) {
	if len(m.facts) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("no sales facts loaded")
	}
	min, max := m.facts[0].Date, m.facts[0].Date
	for _, f := range m.facts[1:] {
		if f.Date.Before(min) {
			min = f.Date
		}
		if f.Date.After(max) {
			max = f.Date
		}
	}
	return min, max, nil
}

func (m *Memory) TimeSeries(_ context.Context) ([]models.TimeSeriesPoint, error) {
	type key struct {
		year    int
		week    int
		country string
	}

	buckets := make(map[key]*models.TimeSeriesPoint)
	for _, f := range m.facts {
		_, week := f.Date.ISOWeek()
		k := key{year: f.Date.Year(), week: week, country: f.Country}
		pt, ok := buckets[k]
		if !ok {
			buckets[k] = &models.TimeSeriesPoint{
				Week:        week,
				Year:        f.Date.Year(),
				Country:     f.Country,
				SalesAmount: f.SalesAmount,
				Date:        f.Date,
			}
			continue
		}
		pt.SalesAmount += f.SalesAmount
		if f.Date.Before(pt.Date) {
			pt.Date = f.Date
		}
	}

	points := make([]models.TimeSeriesPoint, 0, len(buckets))
	for _, pt := range buckets {
		points = append(points, *pt)
	}
	slices.SortFunc(points, func(a, b models.TimeSeriesPoint) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return compareStrings(a.Country, b.Country)
	})
	return points, nil
}

func (m *Memory) TopProducts(_ context.Context, w models.TimeWindow, n int) ([]models.ProductSales, error) {
	totals := make(map[string]float64)
	for _, f := range m.facts {
		if !w.Contains(f.Date) {
			continue
		}
		totals[f.ProductName] += f.SalesAmount
	}

	products := make([]models.ProductSales, 0, len(totals))
	for name, amount := range totals {
		products = append(products, models.ProductSales{ProductName: name, SalesAmount: amount})
	}
	sortBySalesDesc(products)

	if len(products) > n {
		products = products[:n]
	}
	return products, nil
}

func (m *Memory) TopProductsByCountry(_ context.Context, w models.TimeWindow, n int) ([]models.ProductSales, error) {
	perCountry := make(map[string]map[string]float64)
	for _, f := range m.facts {
		if !w.Contains(f.Date) {
			continue
		}
		if perCountry[f.Country] == nil {
			perCountry[f.Country] = make(map[string]float64)
		}
		perCountry[f.Country][f.ProductName] += f.SalesAmount
	}

	countries := make([]string, 0, len(perCountry))
	for country := range perCountry {
		countries = append(countries, country)
	}
	slices.Sort(countries)

	var result []models.ProductSales
	for _, country := range countries {
		ranked := make([]models.ProductSales, 0, len(perCountry[country]))
		for name, amount := range perCountry[country] {
			ranked = append(ranked, models.ProductSales{
				ProductName: name,
				Country:     country,
				SalesAmount: amount,
			})
		}
		sortBySalesDesc(ranked)

		for i := range ranked {
			if i >= n {
				break
			}
			ranked[i].Rank = i + 1
			result = append(result, ranked[i])
		}
	}
	return result, nil
}

func sortBySalesDesc(products []models.ProductSales) {
	slices.SortFunc(products, func(a, b models.ProductSales) int {
		if a.SalesAmount > b.SalesAmount {
			return -1
		}
		if a.SalesAmount < b.SalesAmount {
			return 1
		}
		return compareStrings(a.ProductName, b.ProductName)
	})
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
