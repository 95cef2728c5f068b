package chart

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"volprofile/internal/volprofile"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"
)

const (
	colorCurrent       = "rgba(255, 20, 20, 0.9)"
	colorCurrentBorder = "rgba(255, 0, 0, 1)"
	colorKeyRange      = "rgba(255, 0, 0, 0.6)"
	colorStackRange    = "rgba(54, 162, 235, 0.6)"
	colorNeutral       = "rgba(201, 203, 207, 0.4)"
	colorTitle         = "rgba(0, 0, 0, 0.8)"
	colorAxis          = "#6b7280"

	DefaultBarHeightPx = 25
	DefaultWidthPx     = 1200
	minHeightPx        = 400
)

// Bar 为图表中的一根价位柱。
type Bar struct {
	Key         string
	Label       string
	Price       decimal.Decimal
	Volume      float64
	Color       string
	BorderColor string
	Current     bool
}

// Options controls page geometry.
type Options struct {
	BarHeightPx int
	WidthPx     int
}

func (o Options) withDefaults() Options {
	if o.BarHeightPx <= 0 {
		o.BarHeightPx = DefaultBarHeightPx
	}
	if o.WidthPx <= 0 {
		o.WidthPx = DefaultWidthPx
	}
	return o
}

// Size returns the rendered page size for n bars.
func (o Options) Size(n int) (width, height int) {
	o = o.withDefaults()
	height = n * o.BarHeightPx
	if height < minHeightPx {
		height = minHeightPx
	}
	return o.WidthPx, height
}

// BuildBars 将直方图转换为从高到低排列的柱状数据，并按当前价与堆积区间着色。
func BuildBars(sym volprofile.StockSymbol) ([]Bar, error) {
	levels, err := sym.VolumeHistogram.Levels()
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return []Bar{}, nil
	}
	current := decimal.NewFromFloat(sym.CurrentPrice)
	closest := 0
	for i := 1; i < len(levels); i++ {
		if levels[i].Price.Sub(current).Abs().LessThan(levels[closest].Price.Sub(current).Abs()) {
			closest = i
		}
	}

	conclusion := volprofile.Conclusion(volprofile.BareToken(sym.Conclusion))
	lowerHighlighted := conclusion == volprofile.ConclusionAllTimeHighAcceptable ||
		conclusion == volprofile.ConclusionInHighestStackRangeAcceptable ||
		conclusion.IsEntry()
	upperHighlighted := conclusion.IsEntry()

	bars := make([]Bar, len(levels))
	for i, lvl := range levels {
		price, _ := lvl.Price.Float64()
		bar := Bar{
			Key:    lvl.Key,
			Label:  lvl.Price.StringFixed(2),
			Price:  lvl.Price,
			Volume: lvl.Volume,
		}
		switch {
		case i == closest:
			bar.Color = colorCurrent
			bar.BorderColor = colorCurrentBorder
			bar.Current = true
		case lowerHighlighted && inRange(sym.LowerStackRange, price),
			upperHighlighted && inRange(sym.UpperStackRange, price):
			bar.Color = colorKeyRange
		case inAnyRange(sym.StackRanges, price):
			bar.Color = colorStackRange
		default:
			bar.Color = colorNeutral
		}
		if bar.BorderColor == "" {
			bar.BorderColor = opaque(bar.Color)
		}
		bars[i] = bar
	}
	return bars, nil
}

// RenderHTML writes a standalone echarts page for sym.
func RenderHTML(sym volprofile.StockSymbol, w io.Writer, o Options) error {
	bars, err := BuildBars(sym)
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return fmt.Errorf("no volume histogram for %s", sym.Symbol)
	}
	width, height := o.Size(len(bars))

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s volume profile", sym.Symbol),
			Width:     fmt.Sprintf("%dpx", width),
			Height:    fmt.Sprintf("%dpx", height),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      Title(sym),
			Subtitle:   Subtitle(sym),
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: colorTitle, FontSize: 18},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Name:      "Volume",
			AxisLabel: &opts.AxisLabel{Color: colorAxis},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Name:      "Price",
			AxisLabel: &opts.AxisLabel{Color: colorAxis},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
	)

	// echarts 的类目轴自下而上绘制，这里倒序以保证高价在上。
	labels := make([]string, len(bars))
	data := make([]opts.BarData, len(bars))
	for i := range bars {
		b := bars[len(bars)-1-i]
		labels[i] = b.Label
		style := &opts.ItemStyle{Color: b.Color, BorderColor: b.BorderColor}
		if b.Current {
			style.BorderWidth = 3
		} else {
			style.BorderWidth = 1
		}
		data[i] = opts.BarData{Name: b.Label, Value: b.Volume, ItemStyle: style}
	}
	bar.SetXAxis(labels)
	bar.AddSeries("Volume", data)
	bar.XYReversal()

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}

// Title mirrors the dashboard heading for a symbol.
func Title(sym volprofile.StockSymbol) string {
	return fmt.Sprintf("%s - Volume Profile (Current Price: $%.2f) - %s",
		sym.Symbol, sym.CurrentPrice, volprofile.BareToken(sym.Conclusion))
}

// Subtitle summarises the lower/upper stack ranges, if any.
func Subtitle(sym volprofile.StockSymbol) string {
	parts := make([]string, 0, 3)
	if r := sym.LowerStackRange; r != nil {
		parts = append(parts, "Lower "+describeRange(*r))
	}
	if r := sym.UpperStackRange; r != nil {
		parts = append(parts, "Upper "+describeRange(*r))
	}
	if sym.GainLossRatio != nil {
		parts = append(parts, fmt.Sprintf("G/L %.2f", *sym.GainLossRatio))
	}
	return strings.Join(parts, " | ")
}

func describeRange(r volprofile.StackRange) string {
	return fmt.Sprintf("%.2f-%.2f vol %s (%s)", r.LowerPrice, r.UpperPrice, FormatVolume(r.TotalVolume), FormatPercent(r.VolumePercentage))
}

// FormatVolume 将成交量格式化为 1.2M / 3.4K 形式。
func FormatVolume(v float64) string {
	switch {
	case v >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// FormatPercent renders a 0..1 fraction as a percentage with two decimals.
func FormatPercent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 2, 64) + "%"
}

func inRange(r *volprofile.StackRange, price float64) bool {
	return r != nil && r.Contains(price)
}

func inAnyRange(ranges []volprofile.StackRange, price float64) bool {
	for _, r := range ranges {
		if r.Contains(price) {
			return true
		}
	}
	return false
}

func opaque(rgba string) string {
	idx := strings.LastIndex(rgba, ",")
	if idx < 0 || !strings.HasSuffix(rgba, ")") {
		return rgba
	}
	return rgba[:idx] + ", 1)"
}
