package models

import "time"

// SalesFact is one sold line item from the analytical store. The store is
// read-only; facts are never mutated after load.
type SalesFact struct {
	Date           time.Time
	Country        string
	ProductName    string
	ProductCode    string
	EmployeeNumber string
	SalesAmount    float64
}

// TimeSeriesPoint is one (week, year, country) aggregation row from the
// weekly sales query. Date is the earliest sale date inside the period and
// serves as the x coordinate.
type TimeSeriesPoint struct {
	Week        int       `json:"week"`
	Year        int       `json:"year"`
	Country     string    `json:"country"`
	SalesAmount float64   `json:"sales_amount"`
	Date        time.Time `json:"dt"`
}

// ProductSales is one ranked top-products row. Country and Rank are only
// populated by the per-country variant; Rank starts at 1 within a country.
type ProductSales struct {
	ProductName string  `json:"product_name"`
	Country     string  `json:"country,omitempty"`
	SalesAmount float64 `json:"sales_amount"`
	Rank        int     `json:"rank,omitempty"`
}

// TimeWindow is the range selected by the slider control. Both charts treat
// it as the open interval (Start, End): boundary dates are excluded.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowFromUnix builds a window from the slider's unix-second pair.
func WindowFromUnix(start, end float64) TimeWindow {
	return TimeWindow{
		Start: time.Unix(int64(start), 0).UTC(),
		End:   time.Unix(int64(end), 0).UTC(),
	}
}

func (w TimeWindow) Valid() bool {
	return !w.Start.After(w.End)
}

// Contains reports whether t lies strictly inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return t.After(w.Start) && t.Before(w.End)
}

// ControlState holds the current values of the two dashboard controls. It is
// the only mutable state in the system and lives in the browser; every
// recompute request carries a full copy.
type ControlState struct {
	ByCountry bool       `json:"by_country"`
	Window    TimeWindow `json:"window"`
}
