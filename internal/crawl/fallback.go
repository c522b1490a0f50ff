package crawl

import (
	"fmt"
	"net/url"
	"time"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

type placeholderTemplate struct {
	title    string
	summary  string
	source   string
	category string
}

var placeholderTemplates = [...]placeholderTemplate{
	{
		title:    "%s 관련 최신 기술 동향",
		summary:  "%s 분야의 최신 기술 개발 현황과 주요 연구 성과를 정리했습니다. (수집 시각: %s)",
		source:   "전파신문",
		category: "technology",
	},
	{
		title:    "%s 산업 적용 사례 분석",
		summary:  "%s 기술이 산업 현장에 적용된 사례와 시장 반응을 분석했습니다. (수집 시각: %s)",
		source:   "전자신문",
		category: "industry",
	},
	{
		title:    "%s 관련 정책 및 규제 현황",
		summary:  "%s 관련 정부 정책 방향과 제도 개선 논의를 소개합니다. (수집 시각: %s)",
		source:   "과학기술정보통신부",
		category: "policy",
	},
}

// Placeholders returns the three fixed substitute articles for keyword,
// stamped with now.
func Placeholders(keyword string, now time.Time) []portal.Article {
	stamp := now.Format(crawlTimeLayout)
	date := now.Format("2006-01-02")
	escaped := url.QueryEscape(keyword)
	out := make([]portal.Article, 0, len(placeholderTemplates))
	for i, tpl := range placeholderTemplates {
		out = append(out, portal.Article{
			Title:    fmt.Sprintf(tpl.title, keyword),
			Summary:  fmt.Sprintf(tpl.summary, keyword, stamp),
			URL:      fmt.Sprintf("https://example.com/news/%s?keyword=%s&n=%d", tpl.category, escaped, i+1),
			Source:   tpl.source,
			Date:     date,
			Category: tpl.category,
		})
	}
	return out
}
