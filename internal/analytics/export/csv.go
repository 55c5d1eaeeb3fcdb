package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/simbi/simbi-seller/internal/analytics"
	"github.com/simbi/simbi-seller/internal/commerce"
	"github.com/simbi/simbi-seller/internal/insights"
)

// WriteComparisonCSV serialises a merged comparison table: the calendar label
// column followed by one column per year.
func WriteComparisonCSV(w io.Writer, table insights.Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	label := table.Label
	if label == "" {
		label = "Month"
	}
	header := make([]string, 0, len(table.Years)+1)
	header = append(header, label)
	for _, y := range table.Years {
		header = append(header, strconv.Itoa(y))
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, row.Label)
		for _, v := range row.Values {
			record = append(record, formatFloat(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMonthTotalsCSV emits one Year,Month,Revenue row per selected year.
func WriteMonthTotalsCSV(w io.Writer, rows []insights.MonthTotal) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Year", "Month", "Revenue"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{strconv.Itoa(row.Year), row.MonthName, formatFloat(row.Revenue)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopProductsCSV prints a ranking with product names resolved from the
// catalog. Unknown products fall back to their id.
func WriteTopProductsCSV(w io.Writer, rows []analytics.ProductSales, products []commerce.Product) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Rank", "ProductId", "ProductName", "Qty", "Value"}); err != nil {
		return err
	}
	names := commerce.ProductsByID(products)
	for i, row := range rows {
		name := row.ProductID
		if p, ok := names[row.ProductID]; ok && p.Name != "" {
			name = p.Name
		}
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			row.ProductID,
			name,
			strconv.Itoa(row.Qty),
			formatFloat(row.Revenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteKPICSV serialises KPI summary metrics to a CSV representation.
func WriteKPICSV(w io.Writer, summary analytics.KPISummary, asOf string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"As Of", asOf},
		{"Total Revenue", formatFloat(summary.TotalRevenue)},
		{"Today's Sales", formatFloat(summary.TodaysSales)},
		{"Total Orders", strconv.Itoa(summary.TotalOrders)},
		{"Average Order Value", formatFloat(summary.AOV)},
		{"Product Views", strconv.FormatInt(summary.ProductViews, 10)},
		{"Unfulfilled Orders", strconv.Itoa(summary.UnfulfilledOrders)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSalesSeriesCSV emits a daily sales series.
func WriteSalesSeriesCSV(w io.Writer, series []analytics.DailySales) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Date", "Sales"}); err != nil {
		return err
	}
	for _, point := range series {
		if err := writer.Write([]string{point.Date, formatFloat(point.Sales)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLostSalesCSV lists cancelled and refunded orders.
func WriteLostSalesCSV(w io.Writer, orders []commerce.Order) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"OrderId", "Status", "Total", "CreatedAt"}); err != nil {
		return err
	}
	for _, o := range orders {
		if err := writer.Write([]string{o.ID, string(o.Status), formatFloat(o.Total), o.CreatedAt}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
