package api

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/LJTian/RubberWatch/internal/dashboard"
	"github.com/LJTian/RubberWatch/internal/processor"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
)

// 饼图配色，按 Bucket 顺序循环使用
var palette = []string{"#2f6fb0", "#e3872d", "#4c9a5b", "#b8473e", "#7d5ba6", "#8c6d46"}

var templateFuncs = template.FuncMap{
	"pct":       func(p float64) string { return fmt.Sprintf("%.1f%%", p) },
	"barWidth":  barWidth,
	"barColor":  barColor,
	"pie":       pieGradient,
	"swatch":    swatch,
	"published": published,
	"max":       dashboard.Max,
}

// barWidth 以最大计数为 100% 缩放
func barWidth(count, max int) template.CSS {
	w := 0.0
	if max > 0 {
		w = float64(count) * 100 / float64(max)
	}
	return template.CSS(fmt.Sprintf("width: %.1f%%", w))
}

func barColor(label string) template.CSS {
	switch label {
	case string(processor.RiskHigh):
		return "background: #c0392b"
	case string(processor.RiskNormal):
		return "background: #27ae60"
	}
	return "background: #2f6fb0"
}

func swatch(i int) template.CSS {
	return template.CSS("background: " + palette[i%len(palette)])
}

// pieGradient 用 conic-gradient 画饼图，各扇区角度与占比一致
func pieGradient(bs []dashboard.Bucket) template.CSS {
	if len(bs) == 0 {
		return "background: #ddd"
	}
	var sb strings.Builder
	sb.WriteString("background: conic-gradient(")
	start := 0.0
	for i, b := range bs {
		end := start + b.Percent*3.6
		if i == len(bs)-1 {
			end = 360
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %.2fdeg %.2fdeg", palette[i%len(palette)], start, end)
		start = end
	}
	sb.WriteString(")")
	return template.CSS(sb.String())
}

// published 优先用源数据中的原始字符串
func published(it processor.NewsItem) string {
	if it.Published != "" {
		return it.Published
	}
	if it.PublishedAt != nil {
		return it.PublishedAt.Format("2006-01-02 15:04")
	}
	return ""
}
