// Package htmlparse extracts news articles from search-result HTML. It backs
// the local colly and headless extractors, which fetch the page themselves
// instead of delegating to a hosted extraction service.
package htmlparse

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// blockRule describes one family of result markup.
type blockRule struct {
	block   string
	title   string
	summary string
	source  string
	date    string
}

// Google News cards first, then generic semantic markup.
var rules = []blockRule{
	{block: "div.SoaBEf", title: "div.n0jPhd, div[role=heading]", summary: "div.GI74Re", source: "div.MgUUmf span, div.MgUUmf", date: "div.OSrXXb span, div.OSrXXb"},
	{block: "article", title: "h1, h2, h3, h4", summary: "p", source: ".source, [data-source]", date: "time"},
	{block: ".news-item", title: ".title, h2, h3", summary: ".summary, .desc, p", source: ".source, .press", date: ".date, time"},
}

// Parse returns the articles found in body. pageURL resolves relative links.
func Parse(body []byte, pageURL string) ([]portal.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	return FromDocument(doc, base), nil
}

// FromDocument extracts articles from an already parsed document.
func FromDocument(doc *goquery.Document, base *url.URL) []portal.Article {
	seen := make(map[string]struct{})
	var out []portal.Article
	for _, rule := range rules {
		doc.Find(rule.block).Each(func(_ int, sel *goquery.Selection) {
			article, ok := fromBlock(sel, rule, base)
			if !ok {
				return
			}
			if _, dup := seen[article.URL]; dup {
				return
			}
			seen[article.URL] = struct{}{}
			out = append(out, article)
		})
	}
	return out
}

func fromBlock(sel *goquery.Selection, rule blockRule, base *url.URL) (portal.Article, bool) {
	link := sel.Find("a[href]").First()
	if goquery.NodeName(sel) == "a" {
		link = sel
	}
	href, _ := link.Attr("href")
	resolved := resolveLink(base, href)
	title := text(sel.Find(rule.title).First())
	if title == "" {
		title = text(link)
	}
	if title == "" || resolved == "" {
		return portal.Article{}, false
	}
	dateSel := sel.Find(rule.date).First()
	date, ok := dateSel.Attr("datetime")
	if !ok || strings.TrimSpace(date) == "" {
		date = text(dateSel)
	}
	source := text(sel.Find(rule.source).First())
	if source == "" {
		if v, ok := sel.Attr("data-source"); ok {
			source = strings.TrimSpace(v)
		}
	}
	if source == "" {
		if u, err := url.Parse(resolved); err == nil {
			source = u.Hostname()
		}
	}
	return portal.Article{
		Title:   title,
		Summary: text(sel.Find(rule.summary).First()),
		URL:     resolved,
		Source:  source,
		Date:    strings.TrimSpace(date),
	}, true
}

// resolveLink makes href absolute and unwraps Google "/url?q=" redirects.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.Path == "/url" {
		if target := ref.Query().Get("q"); target != "" {
			return target
		}
		if target := ref.Query().Get("url"); target != "" {
			return target
		}
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
