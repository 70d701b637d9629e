package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/markcheno/go-talib"

	"gpusim/internal/market"
	"gpusim/internal/store"
)

const priceSmaPeriod = 10

// Point is one iteration's end-of-iteration market state, the unit the
// charts are drawn from.
type Point struct {
	Iteration int
	Price     float64
	Stock     int
}

// PointsFromHistory projects in-memory iteration records to chart points,
// taking the last turn of each iteration.
func PointsFromHistory(history [][]market.AgentRecord) []Point {
	points := make([]Point, 0, len(history))
	for i, records := range history {
		if len(records) == 0 {
			continue
		}
		last := records[len(records)-1]
		points = append(points, Point{Iteration: i, Price: last.Price, Stock: last.Stock})
	}
	return points
}

// PointsFromSeries projects a persisted price series to chart points.
func PointsFromSeries(series []store.PricePoint) []Point {
	points := make([]Point, 0, len(series))
	for _, p := range series {
		points = append(points, Point{Iteration: p.Iteration, Price: p.Price, Stock: p.Stock})
	}
	return points
}

// RenderChart writes an HTML page with a price chart (with an SMA overlay
// once enough iterations exist) and a stock chart.
func RenderChart(w io.Writer, title string, points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("no iterations to chart")
	}

	xAxis := make([]string, 0, len(points))
	prices := make([]float64, 0, len(points))
	stocks := make([]float64, 0, len(points))
	for _, p := range points {
		xAxis = append(xAxis, fmt.Sprintf("%d", p.Iteration+1))
		prices = append(prices, p.Price)
		stocks = append(stocks, float64(p.Stock))
	}

	priceLine := charts.NewLine()
	priceLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: "end-of-iteration GPU price"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "price ($)", Scale: opts.Bool(true)}),
	)
	priceLine.SetXAxis(xAxis).
		AddSeries("price", toLineData(prices, 0),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#1f77b4", Width: 1.5}))
	if len(prices) >= priceSmaPeriod {
		sma := talib.Sma(prices, priceSmaPeriod)
		priceLine.AddSeries(fmt.Sprintf("SMA(%d)", priceSmaPeriod), toLineData(sma, priceSmaPeriod-1),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#ff7f0e", Width: 1}))
	}

	stockLine := charts.NewLine()
	stockLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "GPU stock", Subtitle: "units available after each iteration"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "units", Scale: opts.Bool(true)}),
	)
	stockLine.SetXAxis(xAxis).
		AddSeries("stock", toLineData(stocks, 0),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#2ca02c", Width: 1.5}))

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(priceLine, stockLine)
	return page.Render(w)
}

// WriteChartFile renders the chart page to an HTML file, creating parent
// directories as needed.
func WriteChartFile(path, title string, points []Point) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := RenderChart(f, title, points); err != nil {
		return err
	}
	return f.Sync()
}

// toLineData converts a series to echarts points; the first skip entries
// render as gaps so warmup values of an indicator do not draw as zeroes.
func toLineData(values []float64, skip int) []opts.LineData {
	data := make([]opts.LineData, 0, len(values))
	for i, v := range values {
		if i < skip {
			data = append(data, opts.LineData{Value: nil})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}
