package insights

import (
	"fmt"
	"time"

	"github.com/simbi/simbi-seller/internal/analytics"
	"github.com/simbi/simbi-seller/internal/commerce"
)

// Request menampung parameter perbandingan dari handler.
type Request struct {
	Mode  Mode
	Years []int
	Month int
	Chart ChartType
}

// VarianceMetric is the revenue change of a selected year against the year
// that follows it in the selection, summed over the whole table.
type VarianceMetric struct {
	Year        int     `json:"year"`
	BaseYear    int     `json:"baseYear"`
	Revenue     float64 `json:"revenue"`
	BaseRevenue float64 `json:"baseRevenue"`
	ChangePct   float64 `json:"changePct"`
}

// Result aggregates everything the comparison view needs.
type Result struct {
	Mode        Mode               `json:"mode"`
	Month       int                `json:"month,omitempty"`
	Years       []int              `json:"years"`
	Available   []int              `json:"availableYears"`
	Table       Table              `json:"table"`
	RenderModes map[int]RenderMode `json:"renderModes"`
	Variance    []VarianceMetric   `json:"variance"`
}

// MonthTotal is one row of the single-month export.
type MonthTotal struct {
	Year      int     `json:"year"`
	MonthName string  `json:"month"`
	Revenue   float64 `json:"revenue"`
}

// Builder prepares comparison tables from an order snapshot.
type Builder struct {
	loc           *time.Location
	preferredYear int
	maxYears      int
}

// NewBuilder constructs a Builder. preferredYear is the year drawn as bars in
// mixed charts when selected.
func NewBuilder(loc *time.Location, preferredYear, maxYears int) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	if maxYears <= 0 || maxYears > MaxSelectedYears {
		maxYears = MaxSelectedYears
	}
	return &Builder{loc: loc, preferredYear: preferredYear, maxYears: maxYears}
}

// Location returns the calendar timezone used for bucketing.
func (b *Builder) Location() *time.Location { return b.loc }

// Build runs the comparison. An empty year list falls back to the default
// selection of the most recent years.
func (b *Builder) Build(orders []commerce.Order, req Request) (Result, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeYearly
	}
	chart := req.Chart
	if chart == "" {
		chart = ChartLine
	}
	if mode != ModeYearly && mode != ModeMonth {
		return Result{}, fmt.Errorf("insights: unknown mode %q", mode)
	}
	if mode == ModeMonth && (req.Month < 1 || req.Month > 12) {
		return Result{}, ErrInvalidMonth
	}

	available := AvailableYears(orders, b.loc)
	years := req.Years
	if len(years) == 0 {
		years = DefaultSelection(available, b.maxYears)
	}
	res := Result{
		Mode:        mode,
		Years:       years,
		Available:   available,
		RenderModes: RenderModes(years, chart, b.preferredYear),
		Variance:    []VarianceMetric{},
	}
	if mode == ModeMonth {
		res.Month = req.Month
	}
	if len(years) == 0 {
		res.Years = []int{}
		return res, nil
	}
	if err := ValidateSelection(years, b.maxYears); err != nil {
		return Result{}, err
	}

	if mode == ModeYearly {
		res.Table = CompareYears(b.BuildYearly(orders, years))
	} else {
		res.Table = CompareDays(b.BuildMonthly(orders, years, req.Month))
	}
	res.Variance = computeVariance(res.Table)
	return res, nil
}

// BuildYearly runs the monthly bucketizer for every selected year.
func (b *Builder) BuildYearly(orders []commerce.Order, years []int) []YearMonthlySeries {
	series := make([]YearMonthlySeries, 0, len(years))
	for _, y := range years {
		series = append(series, YearMonthlySeries{Year: y, Data: analytics.RevenueByMonthForYear(orders, y, b.loc)})
	}
	return series
}

// BuildMonthly runs the daily bucketizer for month in every selected year.
func (b *Builder) BuildMonthly(orders []commerce.Order, years []int, month int) []YearDailySeries {
	series := make([]YearDailySeries, 0, len(years))
	for _, y := range years {
		series = append(series, YearDailySeries{Year: y, Data: analytics.RevenueByDayForMonth(orders, y, month, b.loc)})
	}
	return series
}

// MonthTotals returns the total revenue of month for every selected year.
func (b *Builder) MonthTotals(orders []commerce.Order, years []int, month int) ([]MonthTotal, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	rows := make([]MonthTotal, 0, len(years))
	for _, y := range years {
		months := analytics.RevenueByMonthForYear(orders, y, b.loc)
		rows = append(rows, MonthTotal{Year: y, MonthName: MonthNames[month-1], Revenue: months[month-1].Revenue})
	}
	return rows, nil
}

// computeVariance compares each selected year with the next one in the
// selection, over the table total.
func computeVariance(table Table) []VarianceMetric {
	metrics := make([]VarianceMetric, 0, len(table.Years))
	if len(table.Years) < 2 {
		return metrics
	}
	totals := make([]float64, len(table.Years))
	for _, row := range table.Rows {
		for i, v := range row.Values {
			totals[i] += v
		}
	}
	for i := 0; i+1 < len(table.Years); i++ {
		metrics = append(metrics, VarianceMetric{
			Year:        table.Years[i],
			BaseYear:    table.Years[i+1],
			Revenue:     totals[i],
			BaseRevenue: totals[i+1],
			ChangePct:   variancePercent(totals[i+1], totals[i]),
		})
	}
	return metrics
}

func variancePercent(base, current float64) float64 {
	if almostZero(base) {
		if almostZero(current) {
			return 0
		}
		return 100
	}
	return (current - base) / base * 100
}

func almostZero(v float64) bool {
	return v > -0.0001 && v < 0.0001
}
