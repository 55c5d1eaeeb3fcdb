package analytics

import (
	"time"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// Common trailing windows, in days.
const (
	WindowWeek    = 7
	WindowMonth   = 30
	WindowQuarter = 90
)

// DailySales is one bucket of a trailing daily series.
type DailySales struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

// MonthRevenue is one month of a calendar year, Month in 1..12.
type MonthRevenue struct {
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
}

// DayRevenue is one day of a calendar month, Day in 1..N.
type DayRevenue struct {
	Day     int     `json:"day"`
	Revenue float64 `json:"revenue"`
}

// SalesOverTime returns exactly days buckets, oldest first, ending on now's
// calendar date. Orders are matched by the date prefix of createdAt; those
// outside the window are dropped.
func SalesOverTime(orders []commerce.Order, days int, now time.Time) []DailySales {
	if days < 1 {
		return []DailySales{}
	}
	series := make([]DailySales, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := now.AddDate(0, 0, -(days - 1 - i)).Format(commerce.DateLayout)
		series[i] = DailySales{Date: key}
		index[key] = i
	}
	for _, o := range orders {
		if i, ok := index[commerce.DateKey(o.CreatedAt)]; ok {
			series[i].Sales += o.Total
		}
	}
	return series
}

// RevenueByMonthForYear always returns 12 entries for months 1..12. Orders
// are placed by their timestamp in loc; other years are excluded.
func RevenueByMonthForYear(orders []commerce.Order, year int, loc *time.Location) []MonthRevenue {
	months := make([]MonthRevenue, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, o := range orders {
		ts, ok := commerce.ParseTimestamp(o.CreatedAt, loc)
		if !ok || ts.Year() != year {
			continue
		}
		months[int(ts.Month())-1].Revenue += o.Total
	}
	return months
}

// RevenueByDayForMonth returns one entry per day of the given month, month in
// 1..12. The length follows the real calendar, leap years included.
func RevenueByDayForMonth(orders []commerce.Order, year, month int, loc *time.Location) []DayRevenue {
	days := DaysInMonth(year, month)
	res := make([]DayRevenue, days)
	for i := range res {
		res[i].Day = i + 1
	}
	for _, o := range orders {
		ts, ok := commerce.ParseTimestamp(o.CreatedAt, loc)
		if !ok || ts.Year() != year || int(ts.Month()) != month {
			continue
		}
		res[ts.Day()-1].Revenue += o.Total
	}
	return res
}

// DaysInMonth uses day 0 of the following month, which normalises to the
// last day of the requested one.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
