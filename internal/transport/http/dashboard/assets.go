package dashboardhttp

import (
	"embed"
	"html/template"
	"strconv"

	"volprofile/internal/chart"
	"volprofile/internal/feed"
	"volprofile/internal/volprofile"
)

//go:embed templates/*.html
var assets embed.FS

// indexView 为首页模板的数据。
type indexView struct {
	Loaded      bool
	Snapshot    feed.Snapshot
	EntryPoints int
	List        stockPage
	PageSizes   []int
	PNGEnabled  bool
}

var templateFuncs = template.FuncMap{
	"formatVolume":  chart.FormatVolume,
	"formatPercent": chart.FormatPercent,
	"formatPrice": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"formatRatio": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
	"bareToken": volprofile.BareToken,
	"rowClass": func(entry bool) string {
		if entry {
			return "entry"
		}
		return "other"
	},
}
