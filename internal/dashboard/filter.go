package dashboard

import (
	"strings"

	"github.com/LJTian/RubberWatch/internal/processor"
)

// All 表示该维度不做限制
const All = "All"

// Filter 是风险与国家两个等值条件，取值为 All 或空时不限制
type Filter struct {
	Risk    string `json:"risk"`
	Country string `json:"country"`
}

// ParseFilter 规范化来自查询参数的取值，空值视为 All
func ParseFilter(risk, country string) Filter {
	return Filter{Risk: normalize(risk), Country: normalize(country)}
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, All) {
		return All
	}
	return v
}

func (f Filter) IsAll() bool {
	return normalize(f.Risk) == All && normalize(f.Country) == All
}

// Apply 返回满足全部条件的条目，顺序不变；结果是新切片，不会修改输入
func (f Filter) Apply(items []processor.NewsItem) []processor.NewsItem {
	risk, country := normalize(f.Risk), normalize(f.Country)

	out := make([]processor.NewsItem, 0, len(items))
	for _, it := range items {
		if risk != All && string(it.Risk) != risk {
			continue
		}
		if country != All && it.Country != country {
			continue
		}
		out = append(out, it)
	}
	return out
}
