package dashboard

import (
	"sort"

	"github.com/LJTian/RubberWatch/internal/processor"
)

// Bucket 是图表中的一个分组
type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Summary 是按风险、地区、国家的计数，始终基于完整 Batch 计算
type Summary struct {
	Total   int      `json:"total"`
	Risk    []Bucket `json:"risk"`
	Region  []Bucket `json:"region"`
	Country []Bucket `json:"country"`
}

func Aggregate(items []processor.NewsItem) Summary {
	risk := make(map[string]int)
	region := make(map[string]int)
	country := make(map[string]int)
	for _, it := range items {
		risk[string(it.Risk)]++
		region[string(it.Region)]++
		country[it.Country]++
	}

	total := len(items)
	return Summary{
		Total:   total,
		Risk:    buckets(risk, total),
		Region:  buckets(region, total),
		Country: buckets(country, total),
	}
}

// buckets 按标签字母序输出
func buckets(counts map[string]int, total int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		b := Bucket{Label: label, Count: n}
		if total > 0 {
			b.Percent = float64(n) * 100 / float64(total)
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Max 返回最大计数，用于柱状图按比例缩放
func Max(bs []Bucket) int {
	m := 0
	for _, b := range bs {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}
