package dashboard

import (
	"time"

	"github.com/LJTian/RubberWatch/internal/processor"
)

// FilterOptions 是两个下拉框的候选项
type FilterOptions struct {
	Risks     []string `json:"risks"`
	Countries []string `json:"countries"`
}

// Options 风险选项固定；国家选项按首次出现的顺序列出实际观测到的值
func Options(items []processor.NewsItem) FilterOptions {
	countries := []string{All}
	seen := make(map[string]struct{})
	for _, it := range items {
		if _, ok := seen[it.Country]; ok {
			continue
		}
		seen[it.Country] = struct{}{}
		countries = append(countries, it.Country)
	}
	return FilterOptions{
		Risks:     []string{All, string(processor.RiskHigh), string(processor.RiskNormal)},
		Countries: countries,
	}
}

// View 是展示层需要的全部数据：列表受筛选约束，图表不受
type View struct {
	Filter     Filter               `json:"filter"`
	Options    FilterOptions        `json:"options"`
	Summary    Summary              `json:"summary"`
	Items      []processor.NewsItem `json:"items"`
	FetchedAt  time.Time            `json:"fetchedAt"`
	FetchError string               `json:"fetchError,omitempty"`
}

func Build(b processor.Batch, f Filter) View {
	f = Filter{Risk: normalize(f.Risk), Country: normalize(f.Country)}
	return View{
		Filter:     f,
		Options:    Options(b.Items),
		Summary:    Aggregate(b.Items),
		Items:      f.Apply(b.Items),
		FetchedAt:  b.FetchedAt,
		FetchError: b.FetchError,
	}
}

// Empty 表示本次没有任何可展示的新闻
func (v View) Empty() bool {
	return v.Summary.Total == 0
}
