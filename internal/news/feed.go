package news

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"intraday-terminal/internal/api"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/types"
)

// Feed fetches an RSS feed and extracts item headlines.
type Feed struct {
	url     string
	timeout time.Duration
}

func NewFeed(url string, timeout time.Duration) *Feed {
	return &Feed{url: url, timeout: timeout}
}

// Fetch returns up to limit headlines in feed order.
func (f *Feed) Fetch(ctx context.Context, limit int) ([]types.Headline, error) {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
		r.Headers.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")
	})

	var (
		headlines []types.Headline
		parseErr  error
	)
	c.OnResponse(func(r *colly.Response) {
		headlines, parseErr = ParseRSS(r.Body, limit)
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		logger.Warn(ctx, "News feed request failed", "url", f.url, "status", r.StatusCode, "error", err)
	})

	if err := c.Visit(f.url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, fetchErr)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return headlines, nil
}

// ParseRSS extracts item titles (and guids as links) from an RSS document.
func ParseRSS(body []byte, limit int) ([]types.Headline, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse rss: %w", err)
	}

	out := make([]types.Headline, 0, max(limit, 0))
	doc.Find("item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		title := cleanText(item.ChildrenFiltered("title").First().Text())
		if title == "" {
			return true
		}
		out = append(out, types.Headline{
			Title: title,
			Link:  cleanText(item.ChildrenFiltered("guid").First().Text()),
		})
		return true
	})
	return out, nil
}

// cleanText unwraps CDATA sections, which the HTML parser leaves as literal text inside title.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<![CDATA[")
	s = strings.TrimSuffix(s, "]]>")
	return strings.TrimSpace(s)
}
