package collector

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/RubberWatch/internal/logger"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
)

const googleNewsUserAgent = "RubberWatchBot/1.0"

// GoogleNewsFetcher 通过 Google News 搜索 RSS 拉取一批新闻
type GoogleNewsFetcher struct {
	FeedURL string
	// Timeout 为 0 时使用 colly 默认超时
	Timeout time.Duration
}

func NewGoogleNewsFetcher(feedURL string, timeout time.Duration) *GoogleNewsFetcher {
	return &GoogleNewsFetcher{FeedURL: feedURL, Timeout: timeout}
}

func (g *GoogleNewsFetcher) Name() string {
	return "google_news"
}

func (g *GoogleNewsFetcher) Fetch(ctx context.Context) ([]FeedEntry, error) {
	log := logger.Component("collector").WithField("source", g.Name())
	log.Debug("fetch feed...")

	c := colly.NewCollector(
		colly.UserAgent(googleNewsUserAgent),
		colly.StdlibContext(ctx),
	)
	if g.Timeout > 0 {
		c.SetRequestTimeout(g.Timeout)
	}

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(g.FeedURL); err != nil {
		return nil, fmt.Errorf("collector: fetch %s: %w", g.Name(), err)
	}

	entries, err := ParseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("collector: parse %s: %w", g.Name(), err)
	}

	log.WithField("items_count", len(entries)).Info("feed fetched")
	return entries, nil
}

// ParseFeed 解析 RSS/Atom 文档；缺少标题或链接的条目直接跳过，其余保持源顺序
func ParseFeed(body []byte) ([]FeedEntry, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]FeedEntry, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.Link)
		if title == "" || link == "" {
			continue
		}

		summary, source := describe(it.Description)
		out = append(out, FeedEntry{
			Title:       title,
			Link:        link,
			Published:   strings.TrimSpace(it.Published),
			PublishedAt: it.PublishedParsed,
			Summary:     summary,
			Source:      source,
		})
	}
	return out, nil
}

// describe 把 Google News 的 description HTML 转成纯文本，
// 发布方名称位于 <font> 中，例如 `<a href="...">title</a>&nbsp;&nbsp;<font color="#6f6f6f">Bangkok Post</font>`
func describe(html string) (summary, source string) {
	html = strings.TrimSpace(html)
	if html == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html, ""
	}
	source = strings.TrimSpace(doc.Find("font").First().Text())
	summary = strings.Join(strings.Fields(doc.Text()), " ")
	return summary, source
}
