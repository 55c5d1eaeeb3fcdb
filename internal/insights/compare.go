package insights

import (
	"strconv"

	"github.com/simbi/simbi-seller/internal/analytics"
)

// ChartType adalah pilihan tampilan grafik perbandingan.
type ChartType string

const (
	ChartLine  ChartType = "line"
	ChartBar   ChartType = "bar"
	ChartMixed ChartType = "mixed"
)

// RenderMode is the per-year presentation hint attached to a table column.
type RenderMode string

const (
	RenderBar  RenderMode = "bar"
	RenderLine RenderMode = "line"
)

// Mode selects between a full-year and a single-month comparison.
type Mode string

const (
	ModeYearly Mode = "yearly"
	ModeMonth  Mode = "month"
)

// MonthLabels are fixed English short names, independent of locale.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthNames are the long names used in month totals exports.
var MonthNames = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

// YearMonthlySeries mewakili 12 bulan pendapatan untuk satu tahun.
type YearMonthlySeries struct {
	Year int                      `json:"year"`
	Data []analytics.MonthRevenue `json:"data"`
}

// YearDailySeries mewakili pendapatan harian satu bulan untuk satu tahun.
type YearDailySeries struct {
	Year int                    `json:"year"`
	Data []analytics.DayRevenue `json:"data"`
}

// Row is one calendar position; Values align with Table.Years.
type Row struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Table is the merged comparison, one column per selected year.
type Table struct {
	Label string `json:"label"`
	Years []int  `json:"years"`
	Rows  []Row  `json:"rows"`
}

// CompareYears merges monthly series into 12 rows Jan..Dec. A year without
// an entry for a month contributes 0.
func CompareYears(series []YearMonthlySeries) Table {
	table := Table{Label: "Month", Years: yearsOf(len(series), func(i int) int { return series[i].Year })}
	lookup := make([]map[int]float64, len(series))
	for i, s := range series {
		lookup[i] = make(map[int]float64, len(s.Data))
		for _, m := range s.Data {
			lookup[i][m.Month] += m.Revenue
		}
	}
	table.Rows = make([]Row, 12)
	for m := 0; m < 12; m++ {
		values := make([]float64, len(series))
		for i := range series {
			values[i] = lookup[i][m+1]
		}
		table.Rows[m] = Row{Label: MonthLabels[m], Values: values}
	}
	return table
}

// CompareDays merges daily series positionally. The row count is the longest
// series; shorter ones are right-padded with 0.
func CompareDays(series []YearDailySeries) Table {
	table := Table{Label: "Day", Years: yearsOf(len(series), func(i int) int { return series[i].Year })}
	var longest int
	for _, s := range series {
		longest = max(longest, len(s.Data))
	}
	table.Rows = make([]Row, longest)
	for d := 0; d < longest; d++ {
		values := make([]float64, len(series))
		for i, s := range series {
			if d < len(s.Data) {
				values[i] = s.Data[d].Revenue
			}
		}
		table.Rows[d] = Row{Label: strconv.Itoa(d + 1), Values: values}
	}
	return table
}

// RenderModes assigns a presentation per year. Non-mixed charts apply the
// chart type to every year. Mixed charts draw the preferred year as bars when
// it is selected, otherwise the first selected year, and the rest as lines.
func RenderModes(years []int, chart ChartType, preferredYear int) map[int]RenderMode {
	modes := make(map[int]RenderMode, len(years))
	if chart != ChartMixed {
		mode := RenderLine
		if chart == ChartBar {
			mode = RenderBar
		}
		for _, y := range years {
			modes[y] = mode
		}
		return modes
	}
	if len(years) == 0 {
		return modes
	}
	barYear := years[0]
	for _, y := range years {
		if y == preferredYear {
			barYear = preferredYear
			break
		}
	}
	for _, y := range years {
		if y == barYear {
			modes[y] = RenderBar
			continue
		}
		modes[y] = RenderLine
	}
	return modes
}

func yearsOf(n int, at func(int) int) []int {
	years := make([]int, n)
	for i := range years {
		years[i] = at(i)
	}
	return years
}
