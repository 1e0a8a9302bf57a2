package processor

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

type Risk string

const (
	RiskHigh   Risk = "High"
	RiskNormal Risk = "Normal"
)

type Region string

const (
	RegionAsia  Region = "Asia"
	RegionOther Region = "Other"
)

const CountryUnknown = "Unknown"

// riskKeywords 任一出现在标题中（忽略大小写）即为 High
var riskKeywords = []string{"tariff", "ban", "strike", "disruption", "policy"}

// countries 的顺序即优先级：标题同时出现多个国家时取最靠前的
var countries = []string{
	"Thailand", "Indonesia", "Malaysia", "Vietnam", "India", "Sri Lanka", "China", "Philippines",
}

var domainCountry = map[string]string{
	"indiatimes":  "India",
	"bangkokpost": "Thailand",
	"jakartapost": "Indonesia",
	"thestar":     "Malaysia",
	"chinadaily":  "China",
	"philstar":    "Philippines",
}

var countryRegion = map[string]Region{
	"Thailand":     RegionAsia,
	"Indonesia":    RegionAsia,
	"Malaysia":     RegionAsia,
	"Vietnam":      RegionAsia,
	"India":        RegionAsia,
	"Sri Lanka":    RegionAsia,
	"China":        RegionAsia,
	"Philippines":  RegionAsia,
	CountryUnknown: RegionOther,
}

// Countries 返回按优先级排列的国家列表副本
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

// RiskKeywords 返回风险关键词副本
func RiskKeywords() []string {
	out := make([]string, len(riskKeywords))
	copy(out, riskKeywords)
	return out
}

// Classify 根据标题与链接得到风险、国家和地区
func Classify(title, link string) (Risk, string, Region) {
	country := DetectCountry(title, link)
	return ClassifyRisk(title), country, RegionOf(country)
}

func ClassifyRisk(title string) Risk {
	lower := strings.ToLower(title)
	for _, kw := range riskKeywords {
		if strings.Contains(lower, kw) {
			return RiskHigh
		}
	}
	return RiskNormal
}

// DetectCountry 先在标题中按优先级查找国家名，找不到再用链接域名兜底
func DetectCountry(title, link string) string {
	lower := strings.ToLower(title)
	for _, c := range countries {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	if c, ok := domainCountry[DomainLabel(link)]; ok {
		return c
	}
	return CountryUnknown
}

// RegionOf 不在表中的国家一律归为 Other
func RegionOf(country string) Region {
	if r, ok := countryRegion[country]; ok {
		return r
	}
	return RegionOther
}

// DomainLabel 提取可注册域名中去掉公共后缀的那一段，
// 例如 https://www.bangkokpost.com/x -> bangkokpost，news.bbc.co.uk -> bbc。
// 无法解析时返回空串。
func DomainLabel(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if !strings.Contains(link, "://") {
		link = "http://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return ""
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(host)
	return strings.TrimSuffix(etld1, "."+suffix)
}
